package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_ObserveOffer(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRecorder("test", reg)
	require.NoError(t, err)

	r.ObserveOffer("offer_submitted", nil, 100*time.Millisecond)
	r.ObserveOffer("registered", errors.New("boom"), time.Second)
	r.ObserveOffer("registered", errors.New("boom"), time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.offers.WithLabelValues("offer_submitted", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.offers.WithLabelValues("registered", "error")))
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveOffer("unauthenticated", nil, 0)
		r.ObserveCredentialLoad(errors.New("missing"))
	})
}

func TestNew_DuplicateRegistration(t *testing.T) {
	srv, err := New("test", "127.0.0.1:0")
	require.NoError(t, err)
	require.NotNil(t, srv.Recorder())

	_, err = NewRecorder("test", srv.Registry())
	assert.Error(t, err)
}
