package port

// Operation names identify client calls in logs, realtime metadata and the audit trail.
const (
	OpList              = "list"
	OpGet               = "get"
	OpCreate            = "create"
	OpUpdate            = "update"
	OpCancel            = "cancel"
	OpMarkActive        = "mark_active"
	OpMarkWaiting       = "mark_waiting"
	OpRegisterPayment   = "register_payment"
	OpAddRooms          = "add_rooms"
	OpRooms             = "rooms"
	OpCheckAvailability = "check_availability"
	OpStatistics        = "statistics"
	OpWaitingList       = "waiting_list"
	OpActiveStays       = "active_stays"
	OpExpiredList       = "expired_list"
	OpToday             = "today"
	OpSearch            = "search"
	OpByDate            = "by_date"
	OpByDateRange       = "by_date_range"
)
