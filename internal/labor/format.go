package labor

import (
	"fmt"
	"strings"

	"github.com/sysu-ecnc-dev/shift-flow/backend/internal/domain"
)

const NoViolationMessage = "✅ 没有劳动法违规"

// FormatForDisplay 把违规列表格式化为可读文本，重大违规在前，提醒在后
// 这里只产出纯文本，具体通过哪个渠道送达由消息层决定
func FormatForDisplay(violations []*domain.ComplianceViolation) string {
	if len(violations) == 0 {
		return NoViolationMessage
	}

	critical := make([]*domain.ComplianceViolation, 0)
	warning := make([]*domain.ComplianceViolation, 0)
	for _, violation := range violations {
		switch violation.Severity {
		case domain.SeverityCritical:
			critical = append(critical, violation)
		case domain.SeverityWarning:
			warning = append(warning, violation)
		}
	}

	var builder strings.Builder

	if len(critical) > 0 {
		builder.WriteString("🚨 重大违规\n")
		for _, violation := range critical {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", violation.UserFullName, violation.Details))
		}
		builder.WriteString("\n")
	}

	if len(warning) > 0 {
		builder.WriteString("⚠️ 需要确认\n")
		for _, violation := range warning {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", violation.UserFullName, violation.Details))
		}
	}

	return strings.TrimSpace(builder.String())
}
