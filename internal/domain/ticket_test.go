package domain

import (
	"fmt"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestMaskCardNumber(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{name: "full card", in: "4111111111111234", want: "1234"},
		{name: "empty", in: "", want: UnknownCardRef},
		{name: "short", in: "987", want: "987"},
		{name: "exactly four", in: "4321", want: "4321"},
		{name: "multibyte tail", in: "12345678€€", want: "78€€"},
		{name: "multibyte short", in: "€€€", want: "€€€"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := MaskCardNumber(tc.in)
			assert.Equal(t, tc.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestNilIfBlank(t *testing.T) {
	blank, spaces, seat := "", "  ", "B2-14"
	assert.Nil(t, NilIfBlank(nil))
	assert.Nil(t, NilIfBlank(&blank))
	assert.Nil(t, NilIfBlank(&spaces))
	assert.Equal(t, &seat, NilIfBlank(&seat))
}

func TestErrorKinds(t *testing.T) {
	assert.True(t, IsNotFound(fmt.Errorf("book: %w", ErrTrainNotFound)))
	assert.True(t, IsNotFound(ErrTicketNotFound))
	assert.False(t, IsNotFound(ErrSeatUnavailable))
	assert.True(t, IsPolicyViolation(fmt.Errorf("cancel: %w", ErrCancellationWindowClosed)))
	assert.False(t, IsPolicyViolation(ErrUnauthorized))
}
