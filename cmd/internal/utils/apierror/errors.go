package apierror

import "net/http"

var (
	InternalServerError = New(http.StatusInternalServerError, KindInternal, "Something went wrong")
	MalformedBodyError  = New(http.StatusBadRequest, KindInvalidInput, "Malformed request body")
	TooManyRequests     = New(http.StatusTooManyRequests, KindTooManyRequests, "Too many requests, please try again later")
	RouteNotFoundError  = New(http.StatusNotFound, KindNotFound, "Route not found")
)

// Authentication. Every variant collapses to 401; the message tells the client why.
var (
	MissingAuthTokenError   = New(http.StatusUnauthorized, KindUnauthenticated, "You are not logged in! Please log in to get access")
	InvalidAuthTokenError   = New(http.StatusUnauthorized, KindUnauthenticated, "Invalid token. Please log in again")
	ExpiredAuthTokenError   = New(http.StatusUnauthorized, KindUnauthenticated, "Your token has expired. Please log in again")
	TokenUserGoneError      = New(http.StatusUnauthorized, KindUnauthenticated, "The user belonging to this token no longer exists")
	StaleAuthTokenError     = New(http.StatusUnauthorized, KindUnauthenticated, "User recently changed password! Please log in again")
	DeactivatedUserError    = New(http.StatusUnauthorized, KindUnauthenticated, "This user account has been deactivated")
	InvalidCredentialsError = New(http.StatusUnauthorized, KindUnauthenticated, "Invalid credentials")
	WrongPasswordError      = New(http.StatusUnauthorized, KindUnauthenticated, "Current password is incorrect")
	ForbiddenError          = New(http.StatusForbidden, KindForbidden, "You do not have permission to perform this action")
)

// Accounts.
var (
	UserNotFoundError       = New(http.StatusNotFound, KindNotFound, "User not found")
	UserEmailNotFoundError  = New(http.StatusNotFound, KindNotFound, "No user found with this email")
	EmailTakenError         = New(http.StatusConflict, KindConflict, "Email already in use")
	InvalidResetTokenError  = New(http.StatusBadRequest, KindInvalidInput, "Invalid or expired password reset token")
	SelfDeactivationError   = New(http.StatusBadRequest, KindInvalidInput, "You cannot deactivate your own account")
	AdminEmailTakenError    = New(http.StatusConflict, KindConflict, "Cannot create superadmin: email is already in use by another user")
	AdminCredentialsMissing = New(http.StatusInternalServerError, KindInternal, "SUPERADMIN_EMAIL and SUPERADMIN_PASSWORD must be set")
)

// Scheduling.
var (
	DoctorNotFoundError      = New(http.StatusNotFound, KindNotFound, "No doctor found with that ID")
	AppointmentNotFoundError = New(http.StatusNotFound, KindNotFound, "No appointment found with that ID")
	DoctorEmailTakenError    = New(http.StatusConflict, KindConflict, "Doctor with this email already exists")
	InvalidSlotError         = New(http.StatusBadRequest, KindInvalidSlot, "Time slot is not offered by this doctor")
	InvalidDateError         = New(http.StatusBadRequest, KindInvalidDate, "Appointment date must be in the future")
	InvalidStatusError       = New(http.StatusBadRequest, KindInvalidStatus, "Invalid status value")
	InvalidTransitionError   = New(http.StatusBadRequest, KindInvalidTransition, "Status change is not allowed from the current status")
	PastAppointmentError     = New(http.StatusBadRequest, KindPastAppointment, "Cannot cancel past appointments")
	SlotTakenError           = New(http.StatusConflict, KindSlotTaken, "This time slot is already booked")
	AlreadyCancelledError    = New(http.StatusConflict, KindAlreadyTerminal, "This appointment is already cancelled")
	AlreadyCompletedError    = New(http.StatusConflict, KindAlreadyTerminal, "This appointment is already completed")
	StaleAppointmentError    = New(http.StatusConflict, KindStaleState, "Appointment was modified concurrently, please retry")
)
