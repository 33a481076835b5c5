package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/noriah/mangler"
	"github.com/noriah/mangler/dsp"
	"github.com/noriah/mangler/effect"
	"github.com/noriah/mangler/input"
	"github.com/noriah/mangler/preset"
	"github.com/noriah/mangler/video"

	_ "github.com/noriah/mangler/input/all"

	"github.com/integrii/flaggy"
)

// AppName is the app name
const AppName = "mangler"

// AppDesc is the app description
const AppDesc = "Real-time video effects in the terminal"

// AppSite is the app website
const AppSite = "https://github.com/noriah/mangler"

var version = "unknown"

func main() {
	log.SetFlags(0)

	cfg := newZeroConfig()

	if doFlags(&cfg) {
		return
	}

	chk(cfg.validate(), "invalid config")

	// The terminal surface owns the screen; keep logs off it.
	switch {
	case cfg.logPath != "":
		f, err := os.OpenFile(cfg.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		chk(err, "failed to open log file")
		defer f.Close()
		log.SetOutput(f)

	case cfg.headless == 0:
		log.SetOutput(io.Discard)
	}

	// Root Context
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	mcfg := cfg.toMangler()
	err := mangler.Run(ctx, &mcfg)

	log.SetOutput(os.Stderr)
	chk(err, "failed to run mangler")
}

func doFlags(cfg *config) bool {
	parser := flaggy.NewParser(AppName)
	parser.Description = AppDesc
	parser.AdditionalHelpPrepend = AppSite
	parser.AdditionalHelpAppend = "\nkeys: q quit, r record, p/P preset, x randomize, f fit, a audio, s snapshot"
	parser.Version = version

	listBackendsCmd := flaggy.Subcommand{
		Name:                 "list-backends",
		ShortName:            "lb",
		Description:          "list all supported audio backends",
		AdditionalHelpAppend: "\nuse the full name after the '-'",
	}

	parser.AttachSubcommand(&listBackendsCmd, 1)

	listDevicesCmd := flaggy.Subcommand{
		Name:                 "list-devices",
		ShortName:            "ld",
		Description:          "list all devices for an audio backend",
		AdditionalHelpAppend: "\nuse the full name after the '-'",
	}

	parser.AttachSubcommand(&listDevicesCmd, 1)

	listCamerasCmd := flaggy.Subcommand{
		Name:        "list-cameras",
		ShortName:   "lc",
		Description: "list all cameras",
	}

	parser.AttachSubcommand(&listCamerasCmd, 1)

	listPresetsCmd := flaggy.Subcommand{
		Name:        "list-presets",
		ShortName:   "lp",
		Description: "list built-in and saved presets",
	}

	parser.AttachSubcommand(&listPresetsCmd, 1)

	var presetName string

	savePresetCmd := flaggy.NewSubcommand("save-preset")
	savePresetCmd.ShortName = "sp"
	savePresetCmd.Description = "save the selected preset with flag overrides under a new name"
	savePresetCmd.AddPositionalValue(&presetName, "name", 1, true, "preset name")

	parser.AttachSubcommand(savePresetCmd, 1)

	deletePresetCmd := flaggy.NewSubcommand("delete-preset")
	deletePresetCmd.ShortName = "dp"
	deletePresetCmd.Description = "delete a saved preset"
	deletePresetCmd.AddPositionalValue(&presetName, "name", 1, true, "preset name")

	parser.AttachSubcommand(deletePresetCmd, 1)

	bandsCmd := flaggy.Subcommand{
		Name:        "bands",
		ShortName:   "bd",
		Description: "print live audio band values (bass mids treble)",
	}

	parser.AttachSubcommand(&bandsCmd, 1)

	parser.String(&cfg.backend, "b", "backend", "audio backend name")
	parser.String(&cfg.device, "d", "device", "audio device name")
	parser.Float64(&cfg.sampleRate, "r", "rate", "audio sample rate")
	parser.Int(&cfg.channelCount, "ch", "channels", "audio channel count (1 or 2)")
	parser.String(&cfg.video, "v", "video", "video source: camera[:device], file:<path>, image:<path>")
	parser.Int(&cfg.width, "W", "width", "capture width")
	parser.Int(&cfg.height, "H", "height", "capture height")
	parser.Int(&cfg.frameRate, "f", "fps", "render frame rate")
	parser.String(&cfg.preset, "p", "preset", "startup preset")
	parser.String(&cfg.presetPath, "", "presets", "preset storage file")
	parser.String(&cfg.outputDir, "o", "out", "directory for recordings and snapshots")
	parser.Bool(&cfg.audio, "a", "audio", "enable audio analysis")
	parser.String(&cfg.fit, "", "fit", "fit mode ("+strings.Join(fitNames(), ", ")+")")
	parser.Int(&cfg.headless, "", "headless", "render this many frames without a terminal and exit")
	parser.String(&cfg.snapshot, "", "snapshot", "write the last frame to this PNG on exit")
	parser.String(&cfg.logPath, "", "log", "log file")

	chk(parser.Parse(), "failed to parse arguments")

	switch {
	case listBackendsCmd.Used:
		def := input.DefaultBackend()

		for _, name := range input.GetAllBackendNames() {
			star := ' '
			if name == def {
				star = '*'
			}
			fmt.Printf("- %s %c\n", name, star)
		}

		return true

	case listDevicesCmd.Used:
		name := cfg.backend
		if name == "" {
			name = input.DefaultBackend()
		}

		backend, err := input.InitBackend(name)
		chk(err, "failed to init backend")
		defer backend.Close()

		devices, err := backend.Devices()
		chk(err, "failed to get devices")

		// We don't really need the default device to be indicated.
		defaultDevice, _ := backend.DefaultDevice()

		fmt.Printf("all devices for %q backend. '*' marks default\n", name)

		for idx := range devices {
			star := ' '
			if defaultDevice != nil && devices[idx].String() == defaultDevice.String() {
				star = '*'
			}

			fmt.Printf("- %v %c\n", devices[idx], star)
		}

		return true

	case listCamerasCmd.Used:
		cams, err := video.Cameras()
		chk(err, "failed to list cameras")

		for _, cam := range cams {
			fmt.Printf("- %s\n", cam)
		}

		return true

	case listPresetsCmd.Used:
		store := openStore(cfg)

		for _, name := range store.Names() {
			kind := "built-in"
			if store.IsUser(name) {
				kind = "saved"
			}
			fmt.Printf("- %s (%s)\n", name, kind)
		}

		return true

	case savePresetCmd.Used:
		store := openStore(cfg)

		mcfg := cfg.toMangler()
		params, err := mangler.ResolveParams(store, &mcfg)
		chk(err, "failed to resolve preset")

		if err := params.Validate(); err != nil {
			log.Printf("warning: %v", err)
		}

		chk(store.Save(presetName, params), "failed to save preset")
		fmt.Printf("saved %q\n", presetName)

		return true

	case deletePresetCmd.Used:
		store := openStore(cfg)

		chk(store.Delete(presetName), "failed to delete preset")
		fmt.Printf("deleted %q\n", presetName)

		return true

	case bandsCmd.Used:
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		bandCfg := dsp.DefaultBandAnalyzerConfig()
		bandCfg.Backend = cfg.backend
		bandCfg.Device = cfg.device
		bandCfg.SampleRate = cfg.sampleRate
		bandCfg.ChannelCount = cfg.channelCount

		bp := BandPrinter{Out: os.Stdout, Rate: cfg.frameRate}
		chk(bp.Run(ctx, bandCfg), "failed to analyze audio")

		return true
	}

	return false
}

func openStore(cfg *config) *preset.Store {
	path := cfg.presetPath
	if path == "" {
		path = preset.DefaultPath()
	}

	store, err := preset.Open(path)
	if err != nil {
		log.Printf("warning: %v", err)
	}

	return store
}

// fitNames lists the accepted --fit values.
func fitNames() []string {
	names := make([]string, 0, 3)
	for f := effect.FitContain; f.Valid(); f++ {
		names = append(names, f.String())
	}
	return names
}

func chk(err error, wrap string) {
	if err != nil {
		log.Fatalln(wrap+": ", err)
	}
}
