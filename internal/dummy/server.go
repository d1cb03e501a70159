// Package dummy is a local target server for exercising surge without
// hitting anything real.
package dummy

import (
	"fmt"
	"math/rand"
	"net/http"
	"time"
)

type ServerConfig struct {
	Port int
}

// route simulates an endpoint with latency jitter in [base, base+spread).
type route struct {
	base   time.Duration
	spread time.Duration
}

var routes = map[string]route{
	"/fast":   {10 * time.Millisecond, 40 * time.Millisecond},
	"/medium": {100 * time.Millisecond, 200 * time.Millisecond},
	"/slow":   {1 * time.Second, 1 * time.Second},
}

// Start blocks serving the simulated endpoints.
func Start(cfg ServerConfig) error {
	mux := http.NewServeMux()

	for path, rt := range routes {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(rt.base + time.Duration(rand.Int63n(int64(rt.spread))))
			fmt.Fprintln(w, "ok")
		})
	}

	// Usually fast, occasionally terrible. P50 looks fine, P99 does not.
	mux.HandleFunc("/spike", func(w http.ResponseWriter, r *http.Request) {
		if rand.Float32() < 0.05 {
			time.Sleep(2 * time.Second)
		} else {
			time.Sleep(20 * time.Millisecond)
		}
		fmt.Fprintln(w, "ok")
	})

	mux.HandleFunc("/error", func(w http.ResponseWriter, r *http.Request) {
		switch rnd := rand.Float32(); {
		case rnd < 0.2:
			http.Error(w, "internal error", http.StatusInternalServerError)
		case rnd < 0.4:
			http.Error(w, "slow down", http.StatusTooManyRequests)
		default:
			fmt.Fprintln(w, "ok")
		}
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	fmt.Printf("Dummy server on http://localhost%s\n", addr)
	fmt.Println("   Endpoints: /fast, /medium, /slow, /spike, /error")

	return (&http.Server{Addr: addr, Handler: mux}).ListenAndServe()
}
