package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ohowland/cgc_hvdc/internal/pkg/comm/modbuscomm"
	"github.com/ohowland/cgc_hvdc/internal/pkg/conversion"
	"github.com/ohowland/cgc_hvdc/internal/pkg/report"
	"github.com/ohowland/cgc_hvdc/internal/pkg/webservice"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

type serveOptions struct {
	addr       string
	cacheSize  int
	streamRate time.Duration
	setpoints  string
}

func newServeCmd(opts *options) *cobra.Command {
	so := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve conversions and link updates over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := so.fromEnv(cmd); err != nil {
				return err
			}
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, *so)
		},
	}
	cmd.Flags().StringVar(&so.addr, "addr", envOr("HVDC_ADDR", ":8080"), "listen address")
	cmd.Flags().IntVar(&so.cacheSize, "cache", 64, "number of cached conversions (env HVDC_CACHE)")
	cmd.Flags().DurationVar(&so.streamRate, "stream-rate", time.Second, "period of streamed link updates (env HVDC_STREAM_RATE)")
	cmd.Flags().StringVar(&so.setpoints, "setpoints", envOr("HVDC_SETPOINTS_CONFIG", ""), "modbus setpoint configuration file")
	return cmd
}

// fromEnv applies HVDC_CACHE and HVDC_STREAM_RATE to the flags left unset.
func (so *serveOptions) fromEnv(cmd *cobra.Command) error {
	if v, ok := os.LookupEnv("HVDC_CACHE"); ok && !cmd.Flags().Changed("cache") {
		n, err := cast.ToIntE(v)
		if err != nil {
			return fmt.Errorf("HVDC_CACHE: %w", err)
		}
		so.cacheSize = n
	}
	if v, ok := os.LookupEnv("HVDC_STREAM_RATE"); ok && !cmd.Flags().Changed("stream-rate") {
		d, err := cast.ToDurationE(v)
		if err != nil {
			return fmt.Errorf("HVDC_STREAM_RATE: %w", err)
		}
		so.streamRate = d
	}
	return nil
}

func serve(ctx context.Context, cfg conversion.Config, so serveOptions) error {
	converter, err := conversion.New(cfg, report.LogSink{})
	if err != nil {
		return err
	}

	var setpoints *modbuscomm.SetpointSource
	if so.setpoints != "" {
		log.Println("[Main] Loading setpoint devices")
		setpoints, err = modbuscomm.LoadSetpointSource(so.setpoints)
		if err != nil {
			return err
		}
	}

	service, err := webservice.New(converter, setpoints, so.cacheSize, so.streamRate)
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{Addr: so.addr, Handler: service.Router()}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
	}()

	log.Println("[Main] Starting Server on", so.addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Println("[Main] Stopping Server")
	return nil
}
