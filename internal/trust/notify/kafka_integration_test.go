//go:build integration

package notify_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"trustplane/internal/trust/notify"
	"trustplane/internal/trust/ports"
	id "trustplane/pkg/domain"
	"trustplane/pkg/testutil/containers"
)

func TestKafkaSinkProducesNotification(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	broker := containers.GetManager().GetRedpanda(t).Broker
	topic := "trust.notifications.test"

	admin, err := kgo.NewClient(kgo.SeedBrokers(broker))
	require.NoError(t, err)
	defer admin.Close()

	_, err = kadm.NewClient(admin).CreateTopic(ctx, 1, 1, nil, topic)
	require.NoError(t, err)

	sink, err := notify.NewKafkaSink([]string{broker}, topic)
	require.NoError(t, err)
	defer sink.Close()

	userID, err := id.ParseUserID(uuid.NewString())
	require.NoError(t, err)

	sent := ports.Notification{
		UserID:  userID,
		Kind:    ports.NotifyAggregateVerified,
		Message: "all verification requirements are complete",
		At:      time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, sink.Notify(ctx, sent))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	fetches := consumer.PollFetches(fetchCtx)
	require.NoError(t, fetches.Err())

	records := fetches.Records()
	require.Len(t, records, 1)
	require.Equal(t, userID.String(), string(records[0].Key))

	var got ports.Notification
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	require.Equal(t, sent.Kind, got.Kind)
	require.Equal(t, sent.UserID, got.UserID)
	require.Equal(t, sent.Message, got.Message)
}
