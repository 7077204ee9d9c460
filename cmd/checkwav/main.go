// checkwav inspects a WAV artifact and optionally plays it on the default
// output, which is handy when a cached file sounds wrong.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

var play = flag.Bool("play", false, "Play the file after inspecting it")

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: checkwav [-play] <file.wav>")
		os.Exit(2)
	}

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	streamer, format, err := wav.Decode(f)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	defer streamer.Close()

	duration := format.SampleRate.D(streamer.Len())
	fmt.Printf("file:        %s\n", path)
	fmt.Printf("sample rate: %d Hz\n", format.SampleRate)
	fmt.Printf("channels:    %d\n", format.NumChannels)
	fmt.Printf("precision:   %d bytes/sample\n", format.Precision)
	fmt.Printf("frames:      %d\n", streamer.Len())
	fmt.Printf("duration:    %s\n", duration.Round(time.Millisecond))

	if !*play {
		return nil
	}

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("failed to init speaker: %w", err)
	}
	done := make(chan struct{})
	speaker.Play(beep.Seq(streamer, beep.Callback(func() {
		close(done)
	})))
	<-done
	return nil
}
