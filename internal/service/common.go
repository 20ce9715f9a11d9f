package service

import (
	stderrors "errors"
	"fmt"

	"github.com/uriel-reyes/sellertools-sub000/internal/ctp"
	"github.com/uriel-reyes/sellertools-sub000/pkg/errors"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// ListOptions is the pagination/sorting state threaded from the table views.
type ListOptions struct {
	Page    int
	PerPage int
	SortBy  string
	SortDir string
}

// Normalize clamps the options to sane bounds and applies the default sort,
// createdAt descending.
func (o ListOptions) Normalize() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.PerPage < 1 {
		o.PerPage = defaultPerPage
	}
	if o.PerPage > maxPerPage {
		o.PerPage = maxPerPage
	}
	if o.SortBy == "" {
		o.SortBy = "createdAt"
		o.SortDir = "desc"
	}
	if o.SortDir != "asc" && o.SortDir != "desc" {
		o.SortDir = "desc"
	}
	return o
}

// Offset converts the page state to the platform's offset parameter.
func (o ListOptions) Offset() int {
	return (o.Page - 1) * o.PerPage
}

// SortClause renders the platform sort string, e.g. "createdAt desc".
func (o ListOptions) SortClause() string {
	return fmt.Sprintf("%s %s", o.SortBy, o.SortDir)
}

// storeWhere builds the tenant filter every store-scoped query embeds.
func storeWhere(storeKey string) string {
	return fmt.Sprintf("store(key=%q)", storeKey)
}

// remoteOrConflict maps a stale-version rejection from the platform to a
// typed conflict error and wraps everything else as a remote failure.
func remoteOrConflict(op, resource, id string, version int64, err error) error {
	var conflict *ctp.ConcurrentModificationError
	if stderrors.As(err, &conflict) {
		return &errors.ErrVersionConflict{Resource: resource, ID: id, Version: version}
	}
	return &errors.ErrRemote{Operation: op, Err: err}
}
