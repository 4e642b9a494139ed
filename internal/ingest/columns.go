package ingest

import "strings"

// Header keyword sets for column-role inference. Matching is substring
// containment on the lowercased, trimmed header name.
var (
	contentKeywords = []string{"内容", "反馈", "意见", "描述", "评论", "留言", "content", "feedback", "comment", "message"}

	// Headers like "反馈时间" or "留言ID" name bookkeeping columns, not
	// the feedback text, and are skipped for the content role.
	contentExclusions = []string{"id", "编号", "序号", "时间", "日期", "date"}

	userTypeKeywords = []string{"用户类型", "用户身份", "会员类型", "会员", "身份", "等级", "user_type", "usertype", "user type", "membership"}
)

// ColumnRoles is the once-per-batch column-inference decision. An index
// of -1 means the role could not be inferred.
type ColumnRoles struct {
	ContentIndex  int
	ContentName   string
	UserTypeIndex int
	UserTypeName  string
}

// DetectColumns picks the content and user-type columns from the header
// row. Each role takes the first matching header in original order. When
// one header matches both keyword sets, content claims it and user-type
// inference keeps scanning the remaining headers.
func DetectColumns(headers []string) ColumnRoles {
	roles := ColumnRoles{ContentIndex: -1, UserTypeIndex: -1}

	for i, h := range headers {
		name := strings.ToLower(strings.TrimSpace(h))
		if containsAny(name, contentKeywords) && !containsAny(name, contentExclusions) {
			roles.ContentIndex = i
			roles.ContentName = h
			break
		}
	}

	for i, h := range headers {
		if i == roles.ContentIndex {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(h))
		if containsAny(name, userTypeKeywords) {
			roles.UserTypeIndex = i
			roles.UserTypeName = h
			break
		}
	}

	return roles
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
