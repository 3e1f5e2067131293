package fetch

import (
	"context"

	"LSProject/tools/errs"
	"LSProject/tools/security"
)

// TokenIdentity 本地校验 JWT 得到当前用户，实现 model.Identity。
// 令牌缺失或无效一律报 AuthRequired，调用方不得降级继续。
type TokenIdentity struct {
	Token string
	Opts  security.Options
}

func (t TokenIdentity) CurrentUser(ctx context.Context) (string, error) {
	if t.Token == "" {
		return "", errs.ErrAuthRequired.Wrap()
	}
	claims, err := security.Verify(t.Opts, t.Token)
	if err != nil {
		return "", errs.ErrAuthRequired.WrapMsg(err, "verify token")
	}
	uid := claims.UserID()
	if uid == "" {
		return "", errs.ErrAuthRequired.WithDetail("token without subject")
	}
	return uid, nil
}
