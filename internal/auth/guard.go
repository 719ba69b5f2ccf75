package auth

import "errors"

// ErrUnauthorized 未登录或非资源所有者
var ErrUnauthorized = errors.New("access unauthorized")

// Action 动作的授权级别
type Action int

const (
	// Public 任何人（包括匿名）
	Public Action = iota
	// AuthenticatedOnly 任意已登录用户，不要求是所有者
	AuthenticatedOnly
	// OwnerOnly 仅资源所有者
	OwnerOnly
)

func (a Action) String() string {
	switch a {
	case Public:
		return "public"
	case AuthenticatedOnly:
		return "authenticated_only"
	case OwnerOnly:
		return "owner_only"
	}
	return "unknown"
}

type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Authorize 判定 id 能否对 ownerID 拥有的资源执行 action。
// ownerID 只在 OwnerOnly 时参与判断。未知 action 一律拒绝。
func Authorize(id Identity, ownerID uint, action Action) Decision {
	switch action {
	case Public:
		return Allow
	case AuthenticatedOnly:
		if id.Authenticated() {
			return Allow
		}
	case OwnerOnly:
		if id.Authenticated() && id.UserID == ownerID {
			return Allow
		}
	}
	return Deny
}

// Require 同 Authorize，拒绝时返回 ErrUnauthorized
func Require(id Identity, ownerID uint, action Action) error {
	if Authorize(id, ownerID, action) == Deny {
		return ErrUnauthorized
	}
	return nil
}
