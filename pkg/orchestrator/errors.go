package orchestrator

import (
	goerrors "github.com/goliatone/go-errors"
)

// ErrorKind names a failure the surfaces present to the user.
type ErrorKind string

const (
	KindNone                 ErrorKind = ""
	KindConfigurationMissing ErrorKind = "CONFIGURATION_MISSING"
	KindPageLinkNotFound     ErrorKind = "PAGE_LINK_NOT_FOUND"
	KindTabLookupFailure     ErrorKind = "TAB_LOOKUP_FAILED"
	KindInjectionFailure     ErrorKind = "INJECTION_FAILED"

	// KindUnknown is any error that did not come from this package.
	KindUnknown ErrorKind = "UNKNOWN"
)

// Numeric codes follow the HTTP status a service would use for the same
// condition.
const (
	codeConfigurationMissing = 412
	codePageLinkNotFound     = 404
	codeTabLookupFailure     = 404
	codeInjectionFailure     = 502
)

// Kind classifies err. Nil yields KindNone.
func Kind(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return KindUnknown
	}
	switch k := ErrorKind(rich.TextCode); k {
	case KindConfigurationMissing, KindPageLinkNotFound, KindTabLookupFailure, KindInjectionFailure:
		return k
	}
	return KindUnknown
}

func envelope(err *goerrors.Error, code int, kind ErrorKind, metadata map[string]any) error {
	err = err.WithCode(code).WithTextCode(string(kind))
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func configurationMissing(missing []string) error {
	return envelope(
		goerrors.New("aread is not configured: set the service URL and credentials in options", goerrors.CategoryValidation),
		codeConfigurationMissing,
		KindConfigurationMissing,
		map[string]any{"missing": missing},
	)
}

func configurationUnreadable(source error) error {
	return envelope(
		goerrors.Wrap(source, goerrors.CategoryValidation, "aread configuration could not be read"),
		codeConfigurationMissing,
		KindConfigurationMissing,
		nil,
	)
}

func pageLinkNotFound(source error, hostname string) error {
	return envelope(
		goerrors.Wrap(source, goerrors.CategoryNotFound, "page link not found"),
		codePageLinkNotFound,
		KindPageLinkNotFound,
		map[string]any{"hostname": hostname},
	)
}

func tabLookupFailure(source error) error {
	return envelope(
		goerrors.Wrap(source, goerrors.CategoryNotFound, "could not find the active tab"),
		codeTabLookupFailure,
		KindTabLookupFailure,
		nil,
	)
}

func injectionFailure(source error, tabID, step string) error {
	return envelope(
		goerrors.Wrap(source, goerrors.CategoryOperation, "could not run in the active tab"),
		codeInjectionFailure,
		KindInjectionFailure,
		map[string]any{"tab_id": tabID, "step": step},
	)
}

// Hint is a short next step for the user, or "" when there is none.
func Hint(err error) string {
	switch Kind(err) {
	case KindConfigurationMissing:
		return "Run `aread options` to set the service URL and credentials."
	case KindPageLinkNotFound:
		return "Open the story itself and try again."
	case KindTabLookupFailure:
		return "Is the browser running with remote debugging enabled?"
	}
	return ""
}
