package utils

import (
	"context"
	"strconv"
	"testing"

	"finscope/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"alice@x.com", "al••••••@x.com"},
		{"a@x.com", "a••••••@x.com"},
		{"no-at-sign", "no-at-sign"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskEmail(tt.in))
		})
	}
}

func TestParseInt(t *testing.T) {
	assert.Equal(t, 3, ParseInt("3", 1))
	assert.Equal(t, 1, ParseInt("", 1))
	assert.Equal(t, 1, ParseInt("abc", 1))
	assert.Equal(t, 10, ParseInt("-2", 10))
}

func TestGenerateOTP_Range(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateOTP()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestGenerateTempPassword(t *testing.T) {
	pw, err := GenerateTempPassword()
	require.NoError(t, err)
	assert.Len(t, pw, TempPasswordLength)
	for _, r := range pw {
		assert.Contains(t, tempPasswordAlphabet, string(r))
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("correct horse", hash))
	assert.False(t, CheckPasswordHash("wrong horse", hash))
	assert.False(t, CheckPasswordHash("correct horse", ""))
}

func TestValidateStruct_HexColor(t *testing.T) {
	type payload struct {
		Color string `validate:"required,hexcolor6"`
	}

	assert.Empty(t, ValidateStruct(payload{Color: "#1A2b3C"}))

	errs := ValidateStruct(payload{Color: "red"})
	assert.Equal(t, "Must be a color like #1A2B3C", errs["Color"])
}

func TestCheckOwnership(t *testing.T) {
	owner := uuid.New()
	ctx := SetAuthUser(context.Background(), AuthUser{ID: owner})

	assert.NoError(t, CheckOwnership(ctx, owner))

	err := CheckOwnership(ctx, uuid.New())
	assert.Equal(t, apperror.KindAuthorization, apperror.KindOf(err))

	err = CheckOwnership(context.Background(), owner)
	assert.Equal(t, apperror.KindAuthentication, apperror.KindOf(err))
}
