package oilconfig

import "log/slog"

// Deprecation describes a configuration shape that still works but should be migrated.
type Deprecation struct {
	Field       string // deprecated field or shape
	Replacement string // what to configure instead
	Message     string
}

var localeStringDeprecation = Deprecation{
	Field:       KeyLocale,
	Replacement: `locale: {"localeId": ...} together with locale_url`,
	Message:     "config property locale should be an object; a bare string is deprecated",
}

func (r *Resolver) warnDeprecated(dep Deprecation, attrs ...any) {
	args := append([]any{
		slog.String("field", dep.Field),
		slog.String("replacement", dep.Replacement),
	}, attrs...)
	r.logger.Warn(dep.Message, args...)
}
