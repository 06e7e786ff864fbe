package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wearxture_back_end/internal/config"
	"wearxture_back_end/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gocql/gocql"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKeyKeepsExtension(t *testing.T) {
	key := ObjectKey("products", "Photo.JPG")
	assert.True(t, strings.HasPrefix(key, "products/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.NotEqual(t, key, ObjectKey("products", "Photo.JPG"))
}

func TestObjectStorageKeyFromURL(t *testing.T) {
	client, err := minio.New("localhost:9000", &minio.Options{Creds: credentials.NewStaticV4("a", "b", "")})
	require.NoError(t, err)
	s := NewObjectStorage(client, config.MinIOConfig{Endpoint: "localhost:9000", Bucket: "media"})

	key, ok := s.keyFromURL("http://localhost:9000/media/products/x.jpg")
	assert.True(t, ok)
	assert.Equal(t, "products/x.jpg", key)

	_, ok = s.keyFromURL("https://cdn.example.com/x.jpg")
	assert.False(t, ok)
	assert.NoError(t, s.Remove(context.Background(), "https://cdn.example.com/x.jpg"))
}

func TestNewObjectStorageWithoutClient(t *testing.T) {
	assert.Nil(t, NewObjectStorage(nil, config.MinIOConfig{}))
}

func TestElasticSearchReturnsIDs(t *testing.T) {
	id := gocql.TimeUUID()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		assert.Contains(t, r.URL.Path, "/products/_search")
		w.Write([]byte(`{"hits":{"hits":[{"_source":{"id":"` + id.String() + `","name":"Kurta"}},{"_source":{"id":"bad"}}]}}`))
	}))
	defer srv.Close()

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	ids, err := NewElasticIndex(client, "products").Search(context.Background(), "kurta", 10)
	require.NoError(t, err)
	assert.Equal(t, []gocql.UUID{id}, ids)
}

type recordingPublisher struct {
	events []models.OrderEvent
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, evt models.OrderEvent) error {
	r.events = append(r.events, evt)
	return r.err
}

func TestFanOutPublishesEverywhere(t *testing.T) {
	failing := &recordingPublisher{err: errors.New("broker down")}
	ok := &recordingPublisher{}

	err := FanOut{failing, ok}.Publish(context.Background(), models.OrderEvent{OrderID: "WX1", Type: models.EventOrderCreated})

	assert.Error(t, err)
	assert.Len(t, failing.events, 1)
	assert.Len(t, ok.events, 1)
}

func TestOrderChannelIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, "orders:asha@example.in", OrderChannel("Asha@Example.in"))
}
