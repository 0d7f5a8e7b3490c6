package command

import (
	"log"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/spf13/cobra"
)

// InitializePprofServer serves the runtime profiles when --pprof is set
func InitializePprofServer(cmd *cobra.Command) {
	flag := cmd.Flag(PprofFlag)
	if flag == nil || !flag.Changed {
		return
	}

	address := cmd.Flag(PprofAddressFlag).Value.String()

	log.Println("Running pprof server on", address)

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	for _, profile := range []string{"goroutine", "heap", "threadcreate", "block", "mutex"} {
		mux.Handle("/debug/pprof/"+profile, pprof.Handler(profile))
	}

	pprofSvr := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := pprofSvr.ListenAndServe(); err != nil {
			log.Fatalln("Failure in running pprof server", "err", err)
		}
	}()
}
