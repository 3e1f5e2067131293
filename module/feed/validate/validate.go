package validate

import (
	"net/url"
	"strings"

	"LSProject/module/feed/model"
	"LSProject/tools/errs"
)

var categories = map[string]bool{
	model.CategoryFormal:  true,
	model.CategoryNatural: true,
	model.CategorySocial:  true,
	model.CategoryApplied: true,
	model.CategoryGeneral: true,
}

var reportTypes = map[string]bool{
	"Harassment/Hate": true,
	"Spam/Scam":       true,
	"Violence/Harm":   true,
	"Sexual Content":  true,
	"Misinformation":  true,
	"Impersonation/Stolen Intellectual Property": true,
	"Other": true,
}

// CreatePost 服务端复核发帖表单，攻击者绕过前端也到不了库
func CreatePost(v model.CreatePostValues) error {
	if err := rangeCheck("user_name", v.UserName, 1, 80); err != nil {
		return err
	}
	if err := rangeCheck("scientific_field", v.ScientificField, 1, 120); err != nil {
		return err
	}
	if err := rangeCheck("content", v.Content, 1, 5000); err != nil {
		return err
	}
	if !categories[v.Category] {
		return errs.ErrValidationFailed.WithDetail("category must be one of formal/natural/social/applied/general")
	}
	if err := urlCheck("media_url", v.MediaURL); err != nil {
		return err
	}
	if err := urlCheck("link", v.Link); err != nil {
		return err
	}
	return nil
}

func CreateComment(v model.CreateCommentValues) error {
	if err := rangeCheck("user_name", v.UserName, 1, 80); err != nil {
		return err
	}
	return rangeCheck("content", v.Content, 1, 2000)
}

func CreateReport(v model.CreateReportValues) error {
	if v.Type == "" {
		return errs.ErrValidationFailed.WithDetail("report type is required")
	}
	if !reportTypes[v.Type] {
		return errs.ErrValidationFailed.WithDetail("unknown report type: " + v.Type)
	}
	return rangeCheck("reason", v.Reason, 1, 2000)
}

// Category 流筛选用，空值放行
func Category(c string) error {
	if c == "" || categories[c] {
		return nil
	}
	return errs.ErrValidationFailed.WithDetail("unknown category: " + c)
}

func rangeCheck(field, value string, min, max int) error {
	n := len(strings.TrimSpace(value))
	if n < min {
		return errs.ErrValidationFailed.WithDetail(field + " is required")
	}
	if n > max {
		return errs.ErrValidationFailed.WithDetail(field + " too long")
	}
	return nil
}

func urlCheck(field, value string) error {
	if value == "" {
		return nil
	}
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errs.ErrValidationFailed.WithDetail(field + " must be a valid URL")
	}
	return nil
}
