// Package classifier assigns each feedback text exactly one category by
// ordered keyword matching. The rule table is the whole classification
// policy: category priority is the declared rule order and the first rule
// with a matching keyword wins.
package classifier

import (
	"strings"

	"feedback-service/internal/models"
)

// PolicyVersion identifies the keyword policy in effect. Bump it whenever
// DefaultRules changes, since any change reclassifies future uploads.
const PolicyVersion = "2024.1"

// Rule binds one category to its keyword set. Keywords must be
// lower-case; matching is substring containment on the case-folded input.
type Rule struct {
	Category models.Category
	Keywords []string
}

// DefaultRules is scanned top to bottom; earlier rules outrank later
// ones. models.Other owns no keywords and is the fallback.
var DefaultRules = []Rule{
	{
		Category: models.FeatureRequest,
		Keywords: []string{"建议", "希望", "能否", "增加", "新增", "添加", "支持", "功能", "想要", "feature", "suggest", "wish", "would be nice"},
	},
	{
		Category: models.BugReport,
		Keywords: []string{"闪退", "崩溃", "报错", "错误", "异常", "卡死", "无法", "打不开", "失败", "bug", "crash", "error", "broken"},
	},
	{
		Category: models.UserExperience,
		Keywords: []string{"体验", "界面", "难用", "不方便", "操作", "交互", "复杂", "丑", "interface", "confusing", "design"},
	},
	{
		Category: models.Performance,
		Keywords: []string{"卡顿", "缓慢", "很慢", "太慢", "加载", "延迟", "速度", "内存", "耗电", "发热", "slow", "lag", "performance"},
	},
	{
		Category: models.AccountIssue,
		Keywords: []string{"账号", "账户", "登录", "注册", "密码", "验证码", "绑定", "注销", "account", "login", "password", "sign in"},
	},
	{
		Category: models.PaymentIssue,
		Keywords: []string{"支付", "付款", "充值", "退款", "扣费", "会员", "订阅", "续费", "价格", "发票", "pay", "refund", "charge", "subscription"},
	},
	{
		Category: models.ContentIssue,
		Keywords: []string{"内容", "资源", "视频", "文章", "课程", "广告", "推荐", "更新太少", "content", "article", "video"},
	},
	{
		Category: models.CustomerService,
		Keywords: []string{"客服", "投诉", "申诉", "没人回复", "回复慢", "服务态度", "人工", "customer service", "support", "complaint"},
	},
}

// Classifier maps feedback text to a category. Safe for concurrent use;
// the rule table is read-only after construction.
type Classifier struct {
	rules []Rule
}

// New returns a classifier using DefaultRules.
func New() *Classifier {
	return NewWithRules(DefaultRules)
}

// NewWithRules builds a classifier from an explicit rule table, mainly
// for testing policy changes in isolation.
func NewWithRules(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify returns exactly one category for any input. Empty or
// keyword-free text yields models.Other.
func (c *Classifier) Classify(content string) models.Category {
	if content == "" {
		return models.Other
	}

	lowered := strings.ToLower(content)
	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lowered, kw) {
				return rule.Category
			}
		}
	}

	return models.Other
}
