package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	kafeido "github.com/kafeido/kafeido-go"
)

func (a *App) newTranscribeCommand() *cobra.Command {
	var (
		language string
		format   string
		segments bool
	)

	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe an audio file",
		Long: `Transcribe an audio file to text.

Examples:
  kafeido transcribe meeting.mp3 --model whisper-large-v3
  kafeido transcribe interview.wav --language de --segments`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.model == "" {
				return exitWithCode(ExitValidation, fmt.Errorf("model required: use --model flag or set default_model in config"))
			}

			file, err := os.Open(args[0])
			if err != nil {
				return exitWithCode(ExitValidation, err)
			}
			defer file.Close()

			client, err := a.newClient()
			if err != nil {
				return exitWithCode(ExitValidation, err)
			}

			responseFormat := format
			if segments && responseFormat == "" {
				responseFormat = "verbose_json"
			}

			transcript, err := client.Audio.Transcriptions.New(cmd.Context(), kafeido.TranscriptionNewParams{
				File:           file,
				Filename:       args[0],
				Model:          a.model,
				Language:       language,
				ResponseFormat: responseFormat,
			})
			if err != nil {
				return a.handleAPIError(err)
			}

			if a.jsonOutput {
				return a.outputJSON(transcript)
			}

			if segments && len(transcript.Segments) > 0 {
				for _, seg := range transcript.Segments {
					fmt.Fprintf(a.stdout, "[%6.2f - %6.2f] %s\n", seg.Start, seg.End, seg.Text)
				}
				return nil
			}
			fmt.Fprintln(a.stdout, transcript.Text)
			return nil
		},
	}

	cmd.Flags().StringVar(&language, "language", "", "audio language (ISO-639-1 code)")
	cmd.Flags().StringVar(&format, "format", "", "response format (json, text, srt, verbose_json, vtt)")
	cmd.Flags().BoolVar(&segments, "segments", false, "print timed segments")

	return cmd
}
