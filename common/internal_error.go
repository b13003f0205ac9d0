package common

import (
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/squareup/rowcodec/errors"
)

// LogInternalError logs err under a fresh reference and returns an error that only carries the
// reference, so tools print something users can quote without dumping stacks at them.
func LogInternalError(err error) errors.RowError {
	var errRef string
	id, err2 := uuid.NewRandom()
	if err2 != nil {
		log.Errorf("failed to generate uuid %v", err2)
	} else {
		errRef = id.String()
	}
	log.Errorf("internal error occurred with reference %s\n%+v", errRef, err)
	return errors.NewInternalError(errRef)
}

// RecoverInternalError turns a panic underway into an internal error stored in *errp. Readers panic
// on rows that contradict their schema; callers decoding untrusted rows defer this.
func RecoverInternalError(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	err, ok := r.(error)
	if ok {
		err = errors.WithStack(err)
	} else {
		err = errors.Errorf("%v", r)
	}
	*errp = LogInternalError(err)
}
