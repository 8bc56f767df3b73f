// Package objectstore_test tests the NATS object store implementation.
package objectstore_test

import (
	"context"
	"testing"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"

	"github.com/thaitrn/musicgen-service/internal/objectstore"
)

// StartTestServer starts an in-memory NATS server for testing purposes.
func StartTestServer(t *testing.T) (*server.Server, *nats.Conn) {
	t.Helper()

	opts := test.DefaultTestOptions
	opts.Port = -1 // Use a random port
	opts.JetStream = true
	natsServer := test.RunServer(&opts)

	natsConnection, err := nats.Connect(natsServer.ClientURL())
	if err != nil {
		t.Fatalf("Failed to connect to test NATS server: %v", err)
	}

	return natsServer, natsConnection
}

func TestNatsObjectStore_UploadDownload(t *testing.T) {
	t.Parallel()

	// 1. Setup
	natsServer, natsConnection := StartTestServer(t)
	defer natsServer.Shutdown()
	defer natsConnection.Close()

	jetstreamContext, err := natsConnection.JetStream()
	require.NoError(t, err)

	bucketName := "test-clips"
	store, err := objectstore.New(jetstreamContext, bucketName)
	require.NoError(t, err)

	// 2. Test Data
	ctx := context.Background()
	key := "my-test-clip.wav"
	uploadData := []byte("fake wav payload")

	// 3. Upload
	err = store.Upload(ctx, key, uploadData)
	require.NoError(t, err)

	// 4. Download
	downloadData, err := store.Download(ctx, key)
	require.NoError(t, err)

	// 5. Assert
	require.Equal(t, uploadData, downloadData)
}

func TestNatsObjectStore_Keys(t *testing.T) {
	t.Parallel()

	natsServer, natsConnection := StartTestServer(t)
	defer natsServer.Shutdown()
	defer natsConnection.Close()

	jetstreamContext, err := natsConnection.JetStream()
	require.NoError(t, err)

	store, err := objectstore.New(jetstreamContext, "test-clip-listing")
	require.NoError(t, err)

	ctx := context.Background()

	// An empty bucket lists no keys rather than erroring.
	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	require.Empty(t, keys)

	require.NoError(t, store.Upload(ctx, "a.wav", []byte("a")))
	require.NoError(t, store.Upload(ctx, "b.wav", []byte("b")))

	keys, err = store.Keys(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a.wav", "b.wav"}, keys)
}
