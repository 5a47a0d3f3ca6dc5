package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifiedError(t *testing.T) {
	t.Run("builder fields", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "theme-config.json").
			Build()

		require.Equal(t, CategoryConfig, err.Category())
		require.Equal(t, SeverityFatal, err.Severity())
		require.Equal(t, "invalid configuration", err.Message())
		file, ok := err.Context().GetString("file")
		require.True(t, ok)
		require.Equal(t, "theme-config.json", file)
		require.Equal(t, "[config] invalid configuration (file=theme-config.json)", err.Error())
	})

	t.Run("wrapped cause", func(t *testing.T) {
		cause := stderrors.New("exit status 64")
		err := WrapError(cause, CategoryContent, "markdown conversion failed").Build()

		require.ErrorIs(t, err, cause)
		require.Equal(t, "[content] markdown conversion failed: exit status 64", err.Error())
	})

	t.Run("detected through fmt wrapping", func(t *testing.T) {
		inner := PathCollisionError("path collision").WithContext("path", "/a").Build()
		err := fmt.Errorf("render: %w", inner)

		got, ok := AsClassified(err)
		require.True(t, ok)
		require.Same(t, inner, got)
		require.True(t, HasCategory(err, CategoryCollision))
		require.Equal(t, CategoryCollision, GetCategory(err))
	})

	t.Run("unclassified defaults", func(t *testing.T) {
		err := stderrors.New("plain")
		require.False(t, HasCategory(err, CategoryContent))
		require.Equal(t, CategoryInternal, GetCategory(err))
		require.Equal(t, SeverityError, GetSeverity(err))
	})

	t.Run("WithContext copies", func(t *testing.T) {
		base := ContentParseError("bad").Build()
		derived := base.WithContext("file", "a.md")

		_, ok := base.Context().Get("file")
		require.False(t, ok)
		v, ok := derived.Context().GetString("file")
		require.True(t, ok)
		require.Equal(t, "a.md", v)
	})
}

func TestConstructorDefaults(t *testing.T) {
	tests := []struct {
		name     string
		err      *ClassifiedError
		category ErrorCategory
		fatal    bool
		retry    bool
	}{
		{"config", ConfigError("x").Build(), CategoryConfig, true, false},
		{"content", ContentParseError("x").Build(), CategoryContent, false, false},
		{"resolution", ArticleResolutionError("x").Build(), CategoryResolution, true, false},
		{"collision", PathCollisionError("x").Build(), CategoryCollision, false, false},
		{"template", TemplateError("x").Build(), CategoryTemplate, false, false},
		{"history", HistoryError("x").Build(), CategoryHistory, false, true},
		{"build", BuildError("x").Build(), CategoryBuild, false, false},
		{"git", GitError("x").Build(), CategoryGit, false, false},
		{"server", ServerError("x").Build(), CategoryServer, true, false},
		{"filesystem", FileSystemError("x").Build(), CategoryFileSystem, false, false},
		{"internal", InternalError("x").Build(), CategoryInternal, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.category, tt.err.Category())
			require.Equal(t, tt.fatal, tt.err.IsFatal())
			require.Equal(t, tt.retry, tt.err.CanRetry())
		})
	}
}

func TestConstructorWithCause(t *testing.T) {
	cause := stderrors.New("reference not found")
	err := GitError("resolve HEAD").WithCause(cause).WithContext("root", "/site").Build()

	require.ErrorIs(t, err, cause)
	require.Equal(t, SeverityWarning, err.Severity())
	require.Equal(t, "[git] resolve HEAD (root=/site): reference not found", err.Error())
}

func TestErrorContextMerge(t *testing.T) {
	var empty ErrorContext
	other := ErrorContext{"a": 1}
	require.Equal(t, other, empty.Merge(other))

	base := ErrorContext{"a": 1, "b": 2}
	merged := base.Merge(ErrorContext{"b": 3})
	require.Equal(t, ErrorContext{"a": 1, "b": 3}, merged)
	require.Equal(t, 2, base["b"])
}
