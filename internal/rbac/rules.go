package rbac

// Default permission matrix. Students read assignments and write their own
// progress; teachers manage the catalog and the classroom network policy.
var RolePermissions = map[string][]string{
	"student": {
		"assignment:view",
		"collection:view",
		"progress:save",
		"progress:view-own",
		"access:check",
		"user:change_password",
	},
	"teacher": {
		"assignment:view",
		"assignment:create",
		"assignment:publish",
		"collection:view",
		"collection:create",
		"classroom:create",
		"classroom:update",
		"progress:view-all",
		"access:check",
		"users:bulk_upsert",
		"users:list",
		"user:change_password",
	},
	"admin": {
		"*", // everything
	},
}
