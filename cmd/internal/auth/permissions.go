package auth

import "holasmile/cmd/internal/utils/apierror"

// Operation names a guarded use case.
type Operation string

const (
	OpScheduleRegister  Operation = "schedule.register"
	OpScheduleEdit      Operation = "schedule.edit"
	OpScheduleCancel    Operation = "schedule.cancel"
	OpScheduleListOwn   Operation = "schedule.list_own"
	OpScheduleApprove   Operation = "schedule.approve"
	OpSupplyCreate      Operation = "supply.create"
	OpSupplyEdit        Operation = "supply.edit"
	OpSupplyToggle      Operation = "supply.toggle"
	OpSupplyView        Operation = "supply.view"
	OpWarrantyEdit      Operation = "warranty.edit"
	OpPrescriptionWrite Operation = "prescription.write"
	OpUserBan           Operation = "user.ban"
	OpTransactionCreate Operation = "transaction.create"
	OpAppointmentView   Operation = "appointment.view"
	OpNotificationOwn   Operation = "notification.own"
)

var (
	staffRoles = []Role{RoleAdministrator, RoleOwner, RoleDentist, RoleAssistant, RoleReceptionist}
	allRoles   = append(append([]Role{}, staffRoles...), RolePatient)
)

var permissions = map[Operation][]Role{
	OpScheduleRegister:  {RoleDentist},
	OpScheduleEdit:      {RoleDentist},
	OpScheduleCancel:    {RoleDentist},
	OpScheduleListOwn:   {RoleDentist},
	OpScheduleApprove:   {RoleOwner},
	OpSupplyCreate:      {RoleAssistant},
	OpSupplyEdit:        {RoleAssistant},
	OpSupplyToggle:      {RoleAssistant},
	OpSupplyView:        staffRoles,
	OpWarrantyEdit:      {RoleAssistant, RoleDentist, RoleReceptionist},
	OpPrescriptionWrite: {RoleDentist},
	OpUserBan:           {RoleAdministrator},
	OpTransactionCreate: {RoleReceptionist, RoleOwner},
	OpAppointmentView:   allRoles,
	OpNotificationOwn:   allRoles,
}

// Allowed reports whether role may perform op. Unknown operations allow nobody.
func Allowed(op Operation, role Role) bool {
	for _, r := range permissions[op] {
		if r == role {
			return true
		}
	}
	return false
}

// Authorize is the first step of every use case. It never touches storage.
func Authorize(id *Identity, op Operation) apierror.ErrorResponse {
	if !id.valid() {
		return apierror.InvalidAuthTokenError
	}
	if !Allowed(op, id.Role) {
		return apierror.ForbiddenError
	}
	return nil
}
