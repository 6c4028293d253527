package main

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/ohowland/cgc_hvdc/internal/pkg/conversion"
	"github.com/ohowland/cgc_hvdc/internal/pkg/database/mongodb"
	"github.com/ohowland/cgc_hvdc/internal/pkg/database/sqldb"
	"github.com/ohowland/cgc_hvdc/internal/pkg/datastreams/natshandler"
	"github.com/ohowland/cgc_hvdc/internal/pkg/dclink"
	"github.com/ohowland/cgc_hvdc/internal/pkg/msg"
	"github.com/ohowland/cgc_hvdc/internal/pkg/record"
	"github.com/ohowland/cgc_hvdc/internal/pkg/report"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// handlers get this long to forward the last messages before shutdown.
const drainWait = 500 * time.Millisecond

type outputs struct {
	publish string
	store   string
}

// LinkOutput is a link with its operating point.
type LinkOutput struct {
	Link   dclink.DCLink       `json:"Link"`
	Update dclink.DCLinkUpdate `json:"Update"`
}

// Output is the result of converting one source.
type Output struct {
	Source  string          `json:"Source"`
	RunID   uuid.UUID       `json:"RunID"`
	Links   []LinkOutput    `json:"Links"`
	Skipped []string        `json:"Skipped"`
	Reports []report.Report `json:"Reports"`
	Error   string          `json:"Error,omitempty"`
}

type stoppable interface {
	Process()
	Stop()
}

// pipeline is a converter whose runs are optionally published to NATS and
// stored in MongoDB.
type pipeline struct {
	converter conversion.Converter
	pub       *msg.PubSub
	handlers  []stoppable
}

func newPipeline(cfg conversion.Config, out outputs) (*pipeline, error) {
	p := &pipeline{pub: msg.NewPublisher(uuid.New())}

	if out.publish != "" {
		log.Println("[Main] Connecting NATS Service")
		h, err := natshandler.New(out.publish, p.pub)
		if err != nil {
			return nil, err
		}
		p.handlers = append(p.handlers, &h)
	}
	if out.store != "" {
		log.Println("[Main] Connecting MongoDB Service")
		h, err := mongodb.New(out.store, p.pub)
		if err != nil {
			return nil, err
		}
		p.handlers = append(p.handlers, &h)
	}

	sink := report.Sink(report.LogSink{})
	if len(p.handlers) > 0 {
		sink = report.Multi(sink, report.NewPublisherSink(p.pub))
	}
	converter, err := conversion.New(cfg, sink)
	if err != nil {
		return nil, err
	}
	p.converter = converter

	for _, h := range p.handlers {
		go h.Process()
	}
	return p, nil
}

func (p *pipeline) run(source string, m record.Model) Output {
	result, err := p.converter.Convert(m)
	out := Output{
		Source:  source,
		RunID:   result.RunID,
		Links:   []LinkOutput{},
		Skipped: result.Skipped,
		Reports: result.Reports,
	}
	if err != nil {
		out.Error = err.Error()
	}
	for _, l := range result.Links {
		out.Links = append(out.Links, LinkOutput{Link: l, Update: p.converter.Update(l)})
	}
	if len(p.handlers) > 0 {
		p.converter.Publish(p.pub, result)
	}
	return out
}

func (p *pipeline) close() {
	if len(p.handlers) == 0 {
		return
	}
	time.Sleep(drainWait)
	for _, h := range p.handlers {
		h.Stop()
	}
	p.pub.Close()
}

func writeOutputs(w io.Writer, outs []Output) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(outs)
}

// convertFiles converts every file concurrently. Outputs keep the order of
// paths. Unreadable files abort the command.
func convertFiles(ctx context.Context, p *pipeline, paths []string) ([]Output, error) {
	outs := make([]Output, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := record.LoadFile(path)
			if err != nil {
				return err
			}
			outs[i] = p.run(path, m)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outs, nil
}

func addOutputFlags(cmd *cobra.Command, out *outputs) {
	cmd.Flags().StringVar(&out.publish, "publish", envOr("HVDC_NATS_CONFIG", ""),
		"NATS configuration file; publishes links and reports when set")
	cmd.Flags().StringVar(&out.store, "store", envOr("HVDC_MONGO_CONFIG", ""),
		"MongoDB configuration file; stores links and reports when set")
}

func newConvertCmd(opts *options) *cobra.Command {
	out := &outputs{}
	cmd := &cobra.Command{
		Use:   "convert FILE...",
		Short: "Convert JSON or YAML grid models into DC links",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			p, err := newPipeline(cfg, *out)
			if err != nil {
				return err
			}
			defer p.close()

			outs, err := convertFiles(cmd.Context(), p, args)
			if err != nil {
				return err
			}
			return writeOutputs(cmd.OutOrStdout(), outs)
		},
	}
	addOutputFlags(cmd, out)
	return cmd
}

func newConvertSQLCmd(opts *options) *cobra.Command {
	out := &outputs{}
	var source string
	cmd := &cobra.Command{
		Use:   "convert-sql",
		Short: "Convert the grid model stored in a MySQL or PostgreSQL database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			src, err := sqldb.New(source)
			if err != nil {
				return err
			}
			m, err := src.Load(cmd.Context())
			if err != nil {
				return err
			}
			p, err := newPipeline(cfg, *out)
			if err != nil {
				return err
			}
			defer p.close()

			return writeOutputs(cmd.OutOrStdout(), []Output{p.run(source, m)})
		},
	}
	cmd.Flags().StringVar(&source, "source", envOr("HVDC_SQL_CONFIG", "./config/sql.json"), "SQL configuration file")
	addOutputFlags(cmd, out)
	return cmd
}
