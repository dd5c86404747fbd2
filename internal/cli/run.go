package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/forPelevin/mediashop/internal/config"
	"github.com/forPelevin/mediashop/internal/domain/photo"
	"github.com/forPelevin/mediashop/internal/pipeline"
	"github.com/forPelevin/mediashop/internal/types"
)

const jobTimeout = 3 * time.Hour

func (a *app) pipelineConfig(cmd *cobra.Command) pipeline.Config {
	w := cmd.ErrOrStderr()
	return pipeline.Config{
		App:    a.cfg,
		Logger: a.log,
		Status: func(msg string) {
			fmt.Fprintln(w, msg)
		},
	}
}

func jobContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	return ctx, func() { cancel(); stop() }
}

func addTrimFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("start", 0, "Trim in-point as a fraction of the duration")
	cmd.Flags().Float64("end", 1, "Trim out-point as a fraction of the duration")
}

func addVideoAdjustFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("brightness", 100, "Brightness percent (100 = unchanged)")
	cmd.Flags().Float64("contrast", 100, "Contrast percent (100 = unchanged)")
	cmd.Flags().Float64("saturation", 100, "Saturation percent (100 = unchanged)")
	cmd.Flags().Float64("speed", 1, "Playback speed multiplier")
}

func videoAdjustments(cmd *cobra.Command) types.VideoAdjustments {
	a := types.NeutralVideo()
	a.Brightness, _ = cmd.Flags().GetFloat64("brightness")
	a.Contrast, _ = cmd.Flags().GetFloat64("contrast")
	a.Saturation, _ = cmd.Flags().GetFloat64("saturation")
	a.Speed, _ = cmd.Flags().GetFloat64("speed")
	return a
}

func absInput(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return abs, nil
}

func newExportCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <video>",
		Short: "Render the trimmed, adjusted and captioned video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := absInput(args[0])
			if err != nil {
				return err
			}
			start, _ := cmd.Flags().GetFloat64("start")
			end, _ := cmd.Flags().GetFloat64("end")
			subs, _ := cmd.Flags().GetString("subtitles")
			captions, _ := cmd.Flags().GetBool("captions")
			req := pipeline.ExportRequest{
				Input:         in,
				Start:         start,
				End:           end,
				Adjust:        videoAdjustments(cmd),
				SubtitlesFile: subs,
				Captions:      captions,
			}
			if err := req.Validate(); err != nil {
				return fmt.Errorf("config: %w", err)
			}

			ctx, cancel := jobContext()
			defer cancel()
			res, err := pipeline.RunExport(ctx, a.pipelineConfig(cmd), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Path)
			return nil
		},
	}
	addTrimFlags(cmd)
	addVideoAdjustFlags(cmd)
	cmd.Flags().String("subtitles", "", "SRT file to burn in, staged as-is")
	cmd.Flags().Bool("captions", false, "Transcribe the video and burn the captions in")
	return cmd
}

func newCaptionsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "captions <video>",
		Short: "Transcribe the video into an SRT file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := absInput(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := jobContext()
			defer cancel()
			_, path, err := pipeline.RunCaptions(ctx, a.pipelineConfig(cmd), pipeline.CaptionsRequest{Input: in})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newPhotoCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photo <image>",
		Short: "Adjust a photo, optionally remove its background, and export it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := absInput(args[0])
			if err != nil {
				return err
			}
			formatFlag, _ := cmd.Flags().GetString("format")
			format, err := photo.ParseFormat(formatFlag)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			adj := types.NeutralPhoto()
			adj.Brightness, _ = cmd.Flags().GetFloat64("brightness")
			adj.Contrast, _ = cmd.Flags().GetFloat64("contrast")
			adj.Grayscale, _ = cmd.Flags().GetFloat64("grayscale")
			removeBG, _ := cmd.Flags().GetBool("remove-bg")

			ctx, cancel := jobContext()
			defer cancel()
			res, err := pipeline.RunPhoto(ctx, a.pipelineConfig(cmd), pipeline.PhotoRequest{
				Input:            in,
				Adjust:           adj,
				Format:           format,
				RemoveBackground: removeBG,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Path)
			return nil
		},
	}
	cmd.Flags().Float64("brightness", 100, "Brightness percent (100 = unchanged)")
	cmd.Flags().Float64("contrast", 100, "Contrast percent (100 = unchanged)")
	cmd.Flags().Float64("grayscale", 0, "Grayscale percent (0 = colour)")
	cmd.Flags().String("format", "png", "Output format: png, jpeg or webp")
	cmd.Flags().Bool("remove-bg", false, "Remove the background before exporting")
	return cmd
}

func newPreviewCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview <video>",
		Short: "Loop the trim window briefly and print what an export would run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := absInput(args[0])
			if err != nil {
				return err
			}
			start, _ := cmd.Flags().GetFloat64("start")
			end, _ := cmd.Flags().GetFloat64("end")
			dur, _ := cmd.Flags().GetDuration("for")
			req := pipeline.PreviewRequest{
				Input:  in,
				Start:  start,
				End:    end,
				Adjust: videoAdjustments(cmd),
				For:    dur,
			}
			if subs, _ := cmd.Flags().GetString("subtitles"); subs != "" {
				b, err := os.ReadFile(subs)
				if err != nil {
					return fmt.Errorf("read subtitles: %w", err)
				}
				req.Subtitles = string(b)
			}

			ctx, cancel := jobContext()
			defer cancel()
			rep, err := pipeline.Preview(ctx, a.pipelineConfig(cmd), req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "duration: %.3fs\n", rep.Duration)
			fmt.Fprintf(out, "window:   %.3fs - %.3fs\n", rep.Start, rep.End)
			fmt.Fprintf(out, "preview:  %s\n", rep.Filter)
			fmt.Fprintf(out, "loops:    %d (playhead %.3fs)\n", rep.Loops, rep.Position)
			fmt.Fprintf(out, "ffmpeg %s\n", strings.Join(quoteArgs(rep.Args), " "))
			return nil
		},
	}
	addTrimFlags(cmd)
	addVideoAdjustFlags(cmd)
	cmd.Flags().Duration("for", 3*time.Second, "How long to loop the preview")
	cmd.Flags().String("subtitles", "", "SRT file to treat as the subtitle buffer")
	return cmd
}

func quoteArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if strings.ContainsAny(a, " '\",;[]") {
			a = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
		}
		out[i] = a
	}
	return out
}

func newJobsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List recent jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			jobs, err := pipeline.ListJobs(cmd.Context(), a.pipelineConfig(cmd), limit)
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No jobs recorded")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderJobs(jobs))
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "Number of jobs to show")
	return cmd
}

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration helpers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "sample",
		Short: "Print an annotated sample configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), config.SampleConfig())
			return err
		},
	})
	return cmd
}
