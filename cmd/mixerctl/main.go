// Command mixerctl is a demo harness for the mixer engine: it wires an
// AudioHost to the default system speaker via beepout, exposes a
// handful of PlaybackObjects as named producers, and lets play/stop/
// volume be driven from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gookit/gcli/v2"

	"github.com/hypersonik/mixer"
	"github.com/hypersonik/mixer/config"
	"github.com/hypersonik/mixer/host"
	"github.com/hypersonik/mixer/host/beepout"
	"github.com/hypersonik/mixer/internal/telemetry"
	"github.com/hypersonik/mixer/playback"
	"github.com/hypersonik/mixer/reaper"
)

// session bundles the long-lived state a single mixerctl invocation
// needs: one engine, one host, one reaper, and the set of
// PlaybackObjects created so far, addressed by name.
type session struct {
	cfg    config.Config
	engine *mixer.MixerEngine
	host   *host.Host
	reaper *reaper.Reaper

	objects map[string]*playback.Object
}

func main() {
	logger, err := telemetry.New("info")
	if err != nil {
		fmt.Fprintln(os.Stderr, "mixerctl: logger init:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg := config.Default()

	eng := mixer.NewEngine(cfg.BufferFrames)
	reaperClient := eng.NewClient()
	r := reaper.New(reaperClient, cfg.ReaperMaxInFlightBatches, logger)
	ep := beepout.New(cfg.BufferFrames * 4)
	h := host.New(ep, eng, logger)

	sess := &session{cfg: cfg, engine: eng, host: h, reaper: r, objects: map[string]*playback.Object{}}

	app := gcli.NewApp()
	app.Name = "mixerctl"
	app.Version = "0.1.0"
	app.Description = "demo CLI for the audio mixer engine"

	app.Add(sess.startCommand())
	app.Add(sess.createCommand())
	app.Add(sess.playCommand())
	app.Add(sess.stopCommand())
	app.Add(sess.volumeCommand())

	app.Run()
}

func (s *session) startCommand() *gcli.Command {
	return &gcli.Command{
		Name:   "start",
		UseFor: "negotiate with the speaker endpoint and begin the realtime loop",
		Func: func(_ *gcli.Command, _ []string) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			s.reaper.Start(ctx)
			if err := s.host.Start(ctx); err != nil {
				return err
			}

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			<-sig

			s.reaper.Stop()
			_ = s.reaper.Wait()
			return s.host.Stop()
		},
	}
}

func (s *session) createCommand() *gcli.Command {
	var nbytes int
	return &gcli.Command{
		Name:   "create",
		UseFor: "create a named PlaybackObject with a silent buffer of the given byte size",
		Config: func(c *gcli.Command) {
			c.IntOpt(&nbytes, "bytes", "b", 44100*4, "buffer size in client-format bytes")
		},
		Func: func(_ *gcli.Command, args []string) error {
			name, err := requireArg(args, 0, "name")
			if err != nil {
				return err
			}
			obj, err := playback.Create(s.engine, mixer.NativeFormat, nbytes, nil)
			if err != nil {
				return err
			}
			s.objects[name] = obj
			fmt.Printf("created %q (%d bytes)\n", name, nbytes)
			return nil
		},
	}
}

func (s *session) playCommand() *gcli.Command {
	var loop bool
	return &gcli.Command{
		Name:   "play",
		UseFor: "play a named PlaybackObject",
		Config: func(c *gcli.Command) {
			c.BoolOpt(&loop, "loop", "l", false, "loop playback")
		},
		Func: func(_ *gcli.Command, args []string) error {
			obj, err := s.lookup(args)
			if err != nil {
				return err
			}
			var flags playback.PlayFlags
			if loop {
				flags |= playback.Looping
			}
			obj.Play(flags)
			return nil
		},
	}
}

func (s *session) stopCommand() *gcli.Command {
	return &gcli.Command{
		Name:   "stop",
		UseFor: "stop a named PlaybackObject",
		Func: func(_ *gcli.Command, args []string) error {
			obj, err := s.lookup(args)
			if err != nil {
				return err
			}
			obj.Stop()
			return nil
		},
	}
}

func (s *session) volumeCommand() *gcli.Command {
	return &gcli.Command{
		Name:   "volume",
		UseFor: "set a named PlaybackObject's volume in millibels [-10000, 0]",
		Func: func(_ *gcli.Command, args []string) error {
			obj, err := s.lookup(args)
			if err != nil {
				return err
			}
			raw, err := requireArg(args, 1, "millibels")
			if err != nil {
				return err
			}
			mb, err := strconv.Atoi(raw)
			if err != nil {
				return fmt.Errorf("mixerctl: volume: %w", err)
			}
			return obj.SetVolume(mb)
		},
	}
}

func (s *session) lookup(args []string) (*playback.Object, error) {
	name, err := requireArg(args, 0, "name")
	if err != nil {
		return nil, err
	}
	obj, ok := s.objects[name]
	if !ok {
		return nil, fmt.Errorf("mixerctl: no such object %q", name)
	}
	return obj, nil
}

func requireArg(args []string, i int, label string) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("mixerctl: missing argument %q", label)
	}
	return args[i], nil
}
