package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gordonklaus/portaudio"
	"github.com/pkg/errors"

	"github.com/mrsingh-rishi/voicescribe/audio"
	"github.com/mrsingh-rishi/voicescribe/auth"
	"github.com/mrsingh-rishi/voicescribe/capture"
	"github.com/mrsingh-rishi/voicescribe/config"
	"github.com/mrsingh-rishi/voicescribe/output"
	proxy "github.com/mrsingh-rishi/voicescribe/service/stt"
	"github.com/mrsingh-rishi/voicescribe/session"
	"github.com/mrsingh-rishi/voicescribe/store"
	"github.com/mrsingh-rishi/voicescribe/stt"
	"github.com/mrsingh-rishi/voicescribe/ui"
	"github.com/mrsingh-rishi/voicescribe/workers"
)

const tokenTTL = 12 * time.Hour

func main() {
	if err := run(); err != nil {
		fmt.Println(ui.BulletStyle.Render("└") + ui.ErrorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

// run owns every resource so its defers execute before main exits.
func run() error {
	config.LoadDotEnv()

	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}

	flag.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "transcription proxy base URL")
	flag.BoolVar(&cfg.Direct, "direct", cfg.Direct, "call Groq directly instead of the proxy")
	flag.StringVar(&cfg.OutDir, "out", cfg.OutDir, "directory downloads are saved to")
	flag.DurationVar(&cfg.Interval, "interval", cfg.Interval, "capture chunk interval")
	flag.IntVar(&cfg.MinSize, "min-size", cfg.MinSize, "smallest recording in bytes worth transcribing")
	flag.Usage = func() {
		fmt.Println(ui.BulletStyle.Render("├") + ui.TextStyle.Render("Usage: scribe [options]"))
		fmt.Println(ui.BulletStyle.Render("│"))
		flag.VisitAll(func(f *flag.Flag) {
			fmt.Println(ui.BulletStyle.Render("├────") + ui.TextStyle.Render("--"+f.Name) + ui.DimTextStyle.Render("  "+f.Usage))
		})
		fmt.Println(ui.BulletStyle.Render("└") + ui.DimTextStyle.Render("keys: space record/pause, s stop, r reset, c copy, d download, q quit"))
	}
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		return err
	}

	logFile, err := tea.LogToFile(cfg.LogFile, "voicescribe")
	if err != nil {
		return err
	}
	defer logFile.Close()

	transcriber, err := newTranscriber(cfg)
	if err != nil {
		return err
	}

	if err := portaudio.Initialize(); err != nil {
		return errors.Wrap(err, "portaudio")
	}
	defer func() {
		if err := portaudio.Terminate(); err != nil {
			log.Printf("portaudio terminate: %v", err)
		}
	}()

	format := audio.Format{SampleRate: cfg.SampleRate, Channels: 1}
	recorder := capture.NewRecorder(audio.NewMicrophone(format, 0, 0), format, cfg.Interval)

	st := store.New()
	worker, err := workers.NewTranscriptionWorker(transcriber, st)
	if err != nil {
		return err
	}
	worker.MinInterval = cfg.MinInterval
	worker.MinSize = cfg.MinSize

	s, err := session.NewSession(recorder, worker, st, output.NewNotifier(16), output.SystemClipboard{}, cfg.OutDir)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Close()

	_, err = tea.NewProgram(ui.New(ctx, s)).Run()
	return err
}

func newTranscriber(cfg config.Client) (stt.Transcriber, error) {
	if cfg.Direct {
		fmt.Println(ui.BulletStyle.Render("┌") + ui.TitleStyle.Render("voicescribe") + ui.DimTextStyle.Render(" direct mode"))
		apiKey, err := config.ResolveAPIKey(cfg.APIKey, config.TerminalPrompt)
		if err != nil {
			return nil, err
		}
		return stt.NewDirectClient(apiKey, cfg.BaseURL, cfg.Model), nil
	}

	var token string
	if cfg.JWTSecret != "" {
		var err error
		if token, err = auth.Sign(cfg.JWTSecret, "scribe", tokenTTL); err != nil {
			return nil, err
		}
	}
	return proxy.NewProxyClient(cfg.ServerURL, token), nil
}
