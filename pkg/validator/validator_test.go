package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type signup struct {
	Username string `validate:"required,username"`
}

func TestUsernameRule(t *testing.T) {
	v := New()
	assert.NoError(t, v.Struct(signup{Username: "tester_1.a-b"}))
	assert.Error(t, v.Struct(signup{Username: ""}))
	assert.Error(t, v.Struct(signup{Username: "bad name"}))
	assert.Error(t, v.Struct(signup{Username: "<script>"}))
}
