package entropy

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourcesStayInUnitInterval(t *testing.T) {
	for _, src := range []Source{Crypto{}, NewSeeded(7), (*Client)(nil)} {
		for i := 0; i < 1000; i++ {
			f := src.Float()
			assert.GreaterOrEqual(t, f, 0.0)
			assert.Less(t, f, 1.0)
		}
	}
}

func TestSeededIsDeterministic(t *testing.T) {
	a, b := NewSeeded(42), NewSeeded(42)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Float(), b.Float())
	}
}

func TestClientDrainsPoolThenFallsBack(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"result":{"random":{"data":[0.25,0.5,0.75]}}}`)
	}))
	defer srv.Close()

	c := NewClient("key")
	c.endpoint = srv.URL

	assert.Equal(t, 0.25, c.Float())
	assert.Equal(t, 1, calls)
	assert.Nil(t, NewClient(""))
}

func TestNewPicksSource(t *testing.T) {
	assert.IsType(t, Crypto{}, New("", 0))
	assert.IsType(t, &Seeded{}, New("", 9))
	assert.IsType(t, &Client{}, New("k", 9))
	assert.Equal(t, 0.3, Fixed(0.3).Float())
}
