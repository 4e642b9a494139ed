package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectColumns(t *testing.T) {
	roles := DetectColumns([]string{"用户类型", "内容", "时间"})

	assert.Equal(t, 1, roles.ContentIndex)
	assert.Equal(t, "内容", roles.ContentName)
	assert.Equal(t, 0, roles.UserTypeIndex)
	assert.Equal(t, "用户类型", roles.UserTypeName)
}

func TestDetectColumnsEnglish(t *testing.T) {
	roles := DetectColumns([]string{"id", "feedback", "user_type"})

	assert.Equal(t, 1, roles.ContentIndex)
	assert.Equal(t, 2, roles.UserTypeIndex)
}

func TestDetectColumnsExclusions(t *testing.T) {
	// 反馈时间 names a timestamp, not the feedback text.
	roles := DetectColumns([]string{"反馈时间", "反馈内容"})

	assert.Equal(t, 1, roles.ContentIndex)
	assert.Equal(t, "反馈内容", roles.ContentName)
}

func TestDetectColumnsFirstMatchWins(t *testing.T) {
	roles := DetectColumns([]string{"意见", "内容"})
	assert.Equal(t, 0, roles.ContentIndex)
}

func TestDetectColumnsSharedHeaderGoesToContent(t *testing.T) {
	// 会员反馈 matches both roles; content claims it and user-type
	// keeps scanning.
	roles := DetectColumns([]string{"会员反馈"})
	assert.Equal(t, 0, roles.ContentIndex)
	assert.Equal(t, -1, roles.UserTypeIndex)

	roles = DetectColumns([]string{"会员反馈", "会员类型"})
	assert.Equal(t, 0, roles.ContentIndex)
	assert.Equal(t, 1, roles.UserTypeIndex)
}

func TestDetectColumnsNoneFound(t *testing.T) {
	roles := DetectColumns([]string{"列A", "列B"})

	assert.Equal(t, -1, roles.ContentIndex)
	assert.Equal(t, "", roles.ContentName)
	assert.Equal(t, -1, roles.UserTypeIndex)
	assert.Equal(t, "", roles.UserTypeName)
}
