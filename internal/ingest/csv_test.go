package ingest

import (
	"testing"

	"feedback-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	table, err := Parse("用户类型,内容,时间\n会员,希望能增加夜间模式功能,2024-01-01\n普通,登录时经常闪退,2024-01-02\n")
	require.NoError(t, err)

	assert.Equal(t, []string{"用户类型", "内容", "时间"}, table.Headers)
	require.Len(t, table.Records, 2)
	assert.Equal(t, []string{"会员", "希望能增加夜间模式功能", "2024-01-01"}, table.Records[0])
}

func TestParseRaggedRows(t *testing.T) {
	table, err := Parse("a,b\n1\n2,3,4\n")
	require.NoError(t, err)
	require.Len(t, table.Records, 2)
	assert.Equal(t, []string{"1"}, table.Records[0])
	assert.Equal(t, []string{"2", "3", "4"}, table.Records[1])
}

func TestParseTrimsHeaderWhitespace(t *testing.T) {
	table, err := Parse(" 内容 , 用户类型 \nx,y\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"内容", "用户类型"}, table.Headers)
}

func TestParseMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":           "",
		"header only":     "用户类型,内容\n",
		"unclosed quote":  "a,b\n\"x,y\n",
		"quote mid-field": "a,b\n1,2\nbad\"field,3\n",
	}

	for name, in := range cases {
		_, err := Parse(in)
		assert.ErrorIs(t, err, models.ErrMalformedInput, name)
	}
}
