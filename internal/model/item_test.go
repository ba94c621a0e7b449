package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItemStatusValid(t *testing.T) {
	assert.True(t, ItemStatusPending.Valid())
	assert.True(t, ItemStatusApproved.Valid())
	assert.False(t, ItemStatus("closed").Valid())
	assert.False(t, ItemStatus("").Valid())
}

func TestValidateItem(t *testing.T) {
	assert.NoError(t, ValidateItem("Lost Wallet", "Brown leather, near library"))
	assert.Error(t, ValidateItem("", "desc"))
	assert.Error(t, ValidateItem("title", ""))
	assert.Error(t, ValidateItem(strings.Repeat("a", MaxTitleLength+1), "desc"))
	assert.Error(t, ValidateItem("title", strings.Repeat("a", MaxDescriptionLength+1)))
}

func TestValidateComment(t *testing.T) {
	assert.NoError(t, ValidateComment("Found it?"))
	assert.Error(t, ValidateComment(""))
	assert.Error(t, ValidateComment(strings.Repeat("x", MaxCommentLength+1)))
	assert.Equal(t, "Found it?", NormalizeText("  Found it?\n"))
}
