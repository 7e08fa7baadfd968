package rbac

// Default role → permission policy. Ownership and enrollment facts are
// checked separately by the policy package; this table only gates the
// verb/route level.
var RolePermissions = map[string][]string{
	"visitor": {
		"course:view-public",
		"product:view",
		"announcement:view",
	},
	"student": {
		"course:view",
		"lesson:view",
		"quiz:view",
		"attempt:submit",
		"attempt:view-own",
		"enrollment:create",
		"enrollment:view-own",
		"progress:update",
		"progress:view-own",
		"payment:create",
		"stats:student",
		"user:change_password",
		"product:view",
		"announcement:view",
	},
	"teacher": {
		"course:view",
		"course:create",
		"course:update-own",
		"course:delete-own",
		"lesson:view",
		"lesson:manage-own",
		"quiz:view",
		"quiz:create",
		"attempt:view-course",
		"stats:teacher",
		"user:change_password",
		"asset:upload",
	},
	"admin": {
		"*", // everything
	},
}
