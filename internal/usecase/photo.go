package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/forPelevin/mediashop/internal/domain/compositor"
	"github.com/forPelevin/mediashop/internal/domain/photo"
	"github.com/forPelevin/mediashop/internal/editor"
	"github.com/forPelevin/mediashop/internal/types"
)

// RemoveBackground segments the loaded photo and replaces it with a copy
// whose alpha channel is the foreground mask.
func (u *Usecase) RemoveBackground(ctx context.Context, s *editor.Session, status StatusFunc) (Result, error) {
	p := s.Photo()
	if p == nil {
		if status != nil {
			status("Please upload a photo first!")
		}
		return Result{}, fmt.Errorf("%w: upload a photo first", ErrNoMedia)
	}
	release, err := u.d.Guard.Acquire(types.JobRemoveBackground, types.MediumPhoto)
	if err != nil {
		return Result{}, err
	}
	defer release()

	j := u.newJob(types.JobRemoveBackground, types.MediumPhoto, status)
	res, err := u.removeBackground(ctx, j, s, p)
	res.JobID = j.id
	if err == nil {
		j.status("Background Removed!")
	}
	return res, j.finish(ctx, "", err)
}

func (u *Usecase) removeBackground(ctx context.Context, j *job, s *editor.Session, p *editor.Photo) (Result, error) {
	j.to(ctx, types.JobLoadingEngine, "Loading AI... (First run takes time)")
	j.to(ctx, types.JobTranscribing, "Removing background...")
	segs, err := u.d.Segmenter.Segment(ctx, p.Data, string(p.Format))
	if err != nil {
		return Result{}, stageErr(KindInference, "segment", err)
	}
	if len(segs) == 0 {
		return Result{}, stageErr(KindInference, "segment", errors.New("no mask returned"))
	}

	j.to(ctx, types.JobRendering, "")
	img, err := compositor.ApplyMask(p.Image, segs[0].Mask)
	if err != nil {
		return Result{}, stageErr(KindInference, "apply mask", err)
	}
	data, err := photo.Encode(img, photo.PNG)
	if err != nil {
		return Result{}, stageErr(KindStageIO, "encode", err)
	}
	s.ReplacePhoto(img, photo.PNG, data)
	return Result{Bytes: len(data)}, nil
}

// ExportPhoto bakes the current adjustments into the photo, encodes it in
// format and hands it to the downloader.
func (u *Usecase) ExportPhoto(ctx context.Context, s *editor.Session, format photo.Format, status StatusFunc) (Result, error) {
	p := s.Photo()
	if p == nil {
		if status != nil {
			status("No image to export!")
		}
		return Result{}, fmt.Errorf("%w: no image to export", ErrNoMedia)
	}
	release, err := u.d.Guard.Acquire(types.JobExport, types.MediumPhoto)
	if err != nil {
		return Result{}, err
	}
	defer release()

	j := u.newJob(types.JobExport, types.MediumPhoto, status)
	res, err := u.exportPhoto(ctx, j, s, p, format)
	res.JobID = j.id
	if err == nil {
		j.status("Export complete: " + res.Path)
	}
	return res, j.finish(ctx, res.Path, err)
}

func (u *Usecase) exportPhoto(ctx context.Context, j *job, s *editor.Session, p *editor.Photo, format photo.Format) (Result, error) {
	j.to(ctx, types.JobRendering, "Rendering...")
	img := photo.Adjust(p.Image, s.PhotoAdjustments())
	data, err := photo.Encode(img, format)
	if err != nil {
		return Result{}, stageErr(KindRender, "encode", err)
	}
	path, err := u.d.Downloader.Save(ctx, format.FileName(), data)
	if err != nil {
		return Result{}, stageErr(KindStageIO, "save output", err)
	}
	return Result{Path: path, Bytes: len(data)}, nil
}
