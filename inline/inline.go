// Package inline runs retrievals without a terminal UI, for scripts and pipes.
package inline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cinesrc/cinesrc/catalog"
	"github.com/cinesrc/cinesrc/lifecycle"
	"github.com/cinesrc/cinesrc/log"
	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// ErrNothingPicked is returned when the picker leaves no source to retrieve.
var ErrNothingPicked = errors.New("no source matches the selection")

type Result struct {
	Source    catalog.Entry      `json:"source"`
	Retrieval lifecycle.Snapshot `json:"retrieval"`
	Error     string             `json:"error,omitempty"`
}

type Output struct {
	Content string    `json:"content"`
	Result  []*Result `json:"result"`
}

// Run starts the picked sources and reports on them. Sources that cannot
// start are reported and collected into the returned error; the others keep
// going.
func Run(ctx context.Context, options *Options) error {
	if options.Out == nil {
		options.Out = os.Stdout
	}

	c := options.Retrievals.Catalog()
	picked := c.Items()
	if picker, ok := options.Picker.Get(); ok {
		picked = picker(picked)
	}

	if len(picked) == 0 {
		if options.Json {
			return writeJson(options.Out, &Output{Content: c.Identity().Key(), Result: []*Result{}})
		}
		return ErrNothingPicked
	}

	var (
		errs    *multierror.Error
		results = make([]*Result, len(picked))
		started []string
	)

	for i, item := range picked {
		id := item.Base().ID
		snap, err := options.Retrievals.StartRetrieval(ctx, id)
		results[i] = &Result{Source: catalog.NewEntry(item), Retrieval: snap}

		if err != nil {
			results[i].Error = err.Error()
			errs = multierror.Append(errs, multierror.Prefix(err, "["+id+"]"))
			continue
		}

		log.With(logrus.Fields{"source": id, "attempt": snap.AttemptID}).Info("retrieval started")
		started = append(started, id)
	}

	if options.Wait && len(started) > 0 {
		final, err := wait(ctx, options, started)
		if err != nil {
			errs = multierror.Append(errs, err)
		}
		for _, r := range results {
			if snap, ok := final[r.Source.ID]; ok {
				r.Retrieval = snap
				if snap.Status == lifecycle.Error {
					r.Error = snap.Message
					errs = multierror.Append(errs, fmt.Errorf("[%s] %s", r.Source.ID, snap.Message))
				}
			}
		}
	}

	if options.Json {
		if err := writeJson(options.Out, &Output{Content: c.Identity().Key(), Result: results}); err != nil {
			return err
		}
	} else if !options.Wait {
		for _, r := range results {
			printSnapshot(options.Out, r.Retrieval)
		}
	}

	return errs.ErrorOrNil()
}

// wait follows ids until each completes or fails. Plain output gets a line per
// snapshot.
func wait(ctx context.Context, options *Options, ids []string) (map[string]lifecycle.Snapshot, error) {
	updates := make(chan lifecycle.Snapshot, len(ids))
	done := make(chan struct{})
	defer close(done)

	for _, id := range ids {
		cancel := options.Retrievals.OnProgress(id, func(s lifecycle.Snapshot) {
			select {
			case updates <- s:
			case <-done:
			}
		})
		defer cancel()
	}

	final := make(map[string]lifecycle.Snapshot, len(ids))
	pending := lo.SliceToMap(ids, func(id string) (string, struct{}) { return id, struct{}{} })

	for len(pending) > 0 {
		select {
		case <-ctx.Done():
			return final, ctx.Err()
		case snap := <-updates:
			id := snap.Key.SourceID
			if _, ok := pending[id]; !ok {
				continue
			}

			final[id] = snap
			if !options.Json {
				printSnapshot(options.Out, snap)
			}

			if !snap.Status.Active() {
				delete(pending, id)
			}
		}
	}

	return final, nil
}

func printSnapshot(out io.Writer, s lifecycle.Snapshot) {
	fmt.Fprintf(out, "%s\t%s\t%3d%%\t%s\t%s\n",
		s.Key.SourceID, s.Status, s.Progress, s.SpeedLabel, s.TimeRemainingLabel)
}

func writeJson(out io.Writer, output *Output) error {
	data, err := json.Marshal(output)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

