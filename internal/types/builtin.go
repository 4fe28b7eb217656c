package types

import "github.com/pkg/errors"

var VALID_COLUMN_KINDS = []ColumnKind{
	ColumnKindText, ColumnKindCategorical, ColumnKindNumericRange, ColumnKindDateRange,
}

type ColumnKind string

const (
	ColumnKindText         ColumnKind = "text"
	ColumnKindCategorical  ColumnKind = "categorical"
	ColumnKindNumericRange ColumnKind = "numeric-range"
	ColumnKindDateRange    ColumnKind = "date-range"
)

func ParseColumnKind(s string) (ColumnKind, error) {
	for _, k := range VALID_COLUMN_KINDS {
		if string(k) == s {
			return k, nil
		}
	}
	return "", errors.Errorf("%s is not a valid column kind", s)
}

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

func ParseSortDirection(s string) (SortDirection, error) {
	switch s {
	case "", "asc":
		return SortAsc, nil
	case "desc":
		return SortDesc, nil
	}
	return "", errors.Errorf("%s is not a valid sort direction", s)
}

func (d SortDirection) Desc() bool { return d == SortDesc }

type FetchStatus string

const (
	FetchStatusIdle    FetchStatus = "idle"
	FetchStatusLoading FetchStatus = "loading"
	FetchStatusSuccess FetchStatus = "success"
	FetchStatusError   FetchStatus = "error"
)
