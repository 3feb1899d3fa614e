package service

import (
	"context"
	"errors"

	"github.com/beka-birhanu/cman/domain"
	"github.com/beka-birhanu/cman/service/i"
)

// Recorders fans a finished match out to every recorder.
type Recorders []i.MatchRecorder

// Record calls every recorder and joins their errors.
func (rs Recorders) Record(ctx context.Context, m *domain.MatchRecord) error {
	var errs []error
	for _, r := range rs {
		if err := r.Record(ctx, m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ i.MatchRecorder = Recorders{}
