package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Codec counts parcel traffic. A nil *Codec is valid and records nothing.
type Codec struct {
	encoded        prometheus.Counter
	decoded        prometheus.Counter
	decodeFailures *prometheus.CounterVec
}

// NewCodec creates the codec counters and registers them on reg.
// Collectors that are already registered are reused.
func NewCodec(reg prometheus.Registerer) (*Codec, error) {
	c := &Codec{
		encoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "telephony",
			Subsystem: "parcel",
			Name:      "encoded_total",
			Help:      "Call records encoded to parcels.",
		}),
		decoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "telephony",
			Subsystem: "parcel",
			Name:      "decoded_total",
			Help:      "Call records decoded from parcels.",
		}),
		decodeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "telephony",
			Subsystem: "parcel",
			Name:      "decode_failures_total",
			Help:      "Parcels rejected while decoding, by reason.",
		}, []string{"reason"}),
	}
	if reg == nil {
		return c, nil
	}

	var err error
	c.encoded, err = registerOrReuse(reg, c.encoded)
	if err != nil {
		return nil, err
	}
	c.decoded, err = registerOrReuse(reg, c.decoded)
	if err != nil {
		return nil, err
	}
	c.decodeFailures, err = registerOrReuse(reg, c.decodeFailures)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, col T) (T, error) {
	if err := reg.Register(col); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return col, err
	}
	return col, nil
}

func (c *Codec) Encoded() {
	if c != nil {
		c.encoded.Inc()
	}
}

func (c *Codec) Decoded() {
	if c != nil {
		c.decoded.Inc()
	}
}

func (c *Codec) DecodeFailed(reason string) {
	if c != nil {
		c.decodeFailures.WithLabelValues(reason).Inc()
	}
}

// Handler exposes the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
