package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNew() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")

	suite.Equal(ErrCodeInvalidParameter, err.Code)
	suite.Equal("invalid parameter", err.Message)
	suite.Nil(err.Cause)
	suite.Equal("[100] invalid parameter", err.Error())
}

func (suite *ErrorTestSuite) TestNewf() {
	err := Newf(ErrCodeDataNotFound, "no data for symbol %s", "BTCUSDT")

	suite.Equal(ErrCodeDataNotFound, err.Code)
	suite.Equal("no data for symbol BTCUSDT", err.Message)
}

func (suite *ErrorTestSuite) TestWrap() {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeQueryFailed, "failed to execute query", cause)

	suite.Equal(ErrCodeQueryFailed, err.Code)
	suite.Equal(cause, err.Cause)
	suite.Contains(err.Error(), "connection refused")
	suite.ErrorIs(err, cause)
}

func (suite *ErrorTestSuite) TestWrapf() {
	cause := errors.New("boom")
	err := Wrapf(ErrCodeSweepRunFailed, cause, "combination %d/%d failed", 3, 10)

	suite.Equal("combination 3/10 failed", err.Message)
	suite.ErrorIs(err, cause)
}

func (suite *ErrorTestSuite) TestGetCode() {
	tests := []struct {
		name     string
		err      error
		expected ErrorCode
	}{
		{
			name:     "structured error",
			err:      New(ErrCodeEmptyDataset, "no rows"),
			expected: ErrCodeEmptyDataset,
		},
		{
			name:     "wrapped structured error",
			err:      fmt.Errorf("outer: %w", New(ErrCodeInvalidRate, "bad rate")),
			expected: ErrCodeInvalidRate,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: ErrCodeUnknown,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.Equal(tt.expected, GetCode(tt.err))
		})
	}
}

func (suite *ErrorTestSuite) TestHasCode() {
	err := New(ErrCodeBacktestConfigError, "negative commission")

	suite.True(HasCode(err, ErrCodeBacktestConfigError))
	suite.False(HasCode(err, ErrCodeEmptyDataset))
}

func (suite *ErrorTestSuite) TestInsufficientDataError() {
	err := NewInsufficientDataErrorf(25, 10, "BTCUSDT", "need %d prices, have %d", 25, 10)

	suite.Equal(25, err.Required)
	suite.Equal(10, err.Actual)
	suite.Equal("BTCUSDT", err.Symbol)
	suite.Equal("need 25 prices, have 10", err.Error())
	suite.True(IsInsufficientDataError(err))
}

func (suite *ErrorTestSuite) TestInsufficientDataErrorWrapped() {
	inner := NewInsufficientDataError(100, 99, "", "window not full")
	wrapped := fmt.Errorf("indicator: %w", inner)

	suite.True(IsInsufficientDataError(wrapped))
	suite.False(IsInsufficientDataError(errors.New("other")))
}
