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

func (suite *ErrorTestSuite) TestNewError() {
	err := New(ErrCodeInvalidInput, "bad price")
	suite.Equal(ErrCodeInvalidInput, err.Code)
	suite.Equal("bad price", err.Message)
	suite.Nil(err.Cause)
	suite.Equal("[100] bad price", err.Error())
}

func (suite *ErrorTestSuite) TestWrapfError() {
	cause := errors.New("connection reset")
	err := Wrapf(ErrCodeDataSourceFailed, cause, "fetch %s", "AAPL")
	suite.Equal("[201] fetch AAPL: connection reset", err.Error())
	suite.True(Is(err, cause))
}

func (suite *ErrorTestSuite) TestGetCodeThroughWrapping() {
	inner := Newf(ErrCodeNoDataFound, "no data for %s", "ZZZZ")
	wrapped := fmt.Errorf("collect: %w", inner)
	suite.Equal(ErrCodeNoDataFound, GetCode(wrapped))
	suite.True(HasCode(wrapped, ErrCodeNoDataFound))
	suite.False(HasCode(wrapped, ErrCodeInvalidInput))
}

func (suite *ErrorTestSuite) TestGetCodeUnknown() {
	suite.Equal(ErrCodeUnknown, GetCode(errors.New("plain")))
	suite.False(HasCode(nil, ErrCodeUnknown))
}

func (suite *ErrorTestSuite) TestInsufficientDataError() {
	err := NewInsufficientDataError(2, 1, "annualized volatility")
	suite.Equal("annualized volatility: need 2 observations, have 1", err.Error())

	wrapped := fmt.Errorf("analyze: %w", err)
	suite.True(IsInsufficientDataError(wrapped))
	suite.Equal(ErrCodeInsufficientData, GetCode(wrapped))
	suite.False(IsInsufficientDataError(New(ErrCodeInvalidInput, "x")))
}

func (suite *ErrorTestSuite) TestCodeString() {
	suite.Equal("no_data_found", ErrCodeNoDataFound.String())
	suite.Equal("unknown", ErrorCode(999).String())
}
