package cloudinary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUploadTargetPreservesDirectories(t *testing.T) {
	folder, base := uploadTarget("edulens", "lectures/7/slides/intro.pdf")
	require.Equal(t, "edulens/lectures/7/slides", folder)
	require.Equal(t, "intro.pdf", base)
}

func TestUploadTargetWithoutRoot(t *testing.T) {
	folder, base := uploadTarget("", "lectures/7/material/handout.txt")
	require.Equal(t, "lectures/7/material", folder)
	require.Equal(t, "handout.txt", base)
}

func TestUploadTargetFlatName(t *testing.T) {
	folder, base := uploadTarget("", "notes.txt")
	require.Equal(t, "", folder)
	require.Equal(t, "notes.txt", base)
}

func TestBuildPublicIDSanitises(t *testing.T) {
	id := buildPublicID("week 3 (final).pdf")
	require.True(t, strings.HasPrefix(id, "week-3--final"), id)
	require.NotContains(t, id, " ")
	require.NotContains(t, id, ".")
}
