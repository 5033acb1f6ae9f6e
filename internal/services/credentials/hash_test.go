package credentials

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tallyledger/internal/dependencies/random"
)

type HashSuite struct {
	suite.Suite
	rnd random.Random
}

func TestHashSuite(t *testing.T) {
	suite.Run(t, new(HashSuite))
}

func (s *HashSuite) SetupTest() {
	s.rnd = random.New()
}

func (s *HashSuite) TestHashFormat() {
	stored, err := HashPin(s.rnd, "1234", 0)
	s.Require().NoError(err)

	parts := strings.Split(stored, "$")
	s.Require().Len(parts, 4)
	s.Equal("pbkdf2_sha256", parts[0])
	s.Equal("100000", parts[1])
	s.Len(parts[2], SaltBytes*2)
	s.Len(parts[3], 64)
}

func (s *HashSuite) TestHashNeverContainsPlaintext() {
	stored, err := HashPin(s.rnd, "4711", 1000)
	s.Require().NoError(err)
	s.NotContains(stored, "4711")
}

func (s *HashSuite) TestSaltsDiffer() {
	a, err := HashPin(s.rnd, "1234", 1000)
	s.Require().NoError(err)
	b, err := HashPin(s.rnd, "1234", 1000)
	s.Require().NoError(err)
	s.NotEqual(a, b)
}

func (s *HashSuite) TestVerifyRoundTrip() {
	for _, pin := range []string{"0000", "1234", "9999", "0420"} {
		stored, err := HashPin(s.rnd, pin, 1000)
		s.Require().NoError(err)
		s.True(VerifyPin(pin, stored), pin)
	}
}

func (s *HashSuite) TestVerifyWrongPin() {
	stored, err := HashPin(s.rnd, "1234", 1000)
	s.Require().NoError(err)
	s.False(VerifyPin("1235", stored))
	s.False(VerifyPin("", stored))
}

func (s *HashSuite) TestVerifyMalformed() {
	valid, err := HashPin(s.rnd, "1234", 1000)
	s.Require().NoError(err)
	parts := strings.Split(valid, "$")

	cases := []string{
		"",
		"garbage",
		"1234",
		fmt.Sprintf("md5$%s$%s$%s", parts[1], parts[2], parts[3]),
		fmt.Sprintf("%s$abc$%s$%s", Algorithm, parts[2], parts[3]),
		fmt.Sprintf("%s$0$%s$%s", Algorithm, parts[2], parts[3]),
		fmt.Sprintf("%s$%s$zz$%s", Algorithm, parts[1], parts[3]),
		fmt.Sprintf("%s$%s$%s", Algorithm, parts[1], parts[2]),
		valid + "$extra",
	}
	for _, stored := range cases {
		s.False(VerifyPin("1234", stored), stored)
	}
}
