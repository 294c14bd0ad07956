package tasks

import "tasktrack/internal/notify"

// Notifier receives user-facing notifications. *notify.Queue satisfies it.
type Notifier interface {
	Enqueue(n notify.Notification) notify.Notification
}

// report turns a result into at most one notification.
// Validation and no-session outcomes are left to the caller; stale ones
// are dropped.
func report(n Notifier, r Result, completed bool) {
	msg, ok := message(r, completed)
	if !ok {
		return
	}
	n.Enqueue(msg)
}

func message(r Result, completed bool) (notify.Notification, bool) {
	switch r.Kind {
	case KindValidation, KindNoSession, KindStale:
		return notify.Notification{}, false
	case KindUnauthorized:
		return failure("Session expired, please log in again"), true
	case KindOK:
		text := successText(r.Op, completed)
		if text == "" {
			return notify.Notification{}, false
		}
		return success(text), true
	}

	switch r.Op {
	case OpLogin:
		if r.Kind == KindTransport {
			return failure("An error occurred during login"), true
		}
		return failure("Invalid credentials"), true
	case OpRegister:
		if r.Kind == KindTransport {
			return failure("An error occurred during registration"), true
		}
		return failure("Registration failed"), true
	case OpRefresh:
		return failure("Failed to load tasks"), true
	case OpAdd:
		return failure("Failed to add task"), true
	case OpUpdate, OpToggle:
		return failure("Failed to update task"), true
	case OpDelete:
		return failure("Failed to delete task"), true
	}
	return notify.Notification{}, false
}

func successText(op Op, completed bool) string {
	switch op {
	case OpLogin:
		return "Logged in successfully"
	case OpRegister:
		return "Registration successful. Please login."
	case OpLogout:
		return "Logged out successfully"
	case OpAdd:
		return "Task added successfully"
	case OpUpdate:
		return "Task updated successfully"
	case OpToggle:
		if completed {
			return "Task marked as completed"
		}
		return "Task marked as not completed"
	case OpDelete:
		return "Task deleted successfully"
	}
	return ""
}

func success(desc string) notify.Notification {
	return notify.Notification{Title: "Success", Description: desc, Severity: notify.Normal}
}

func failure(desc string) notify.Notification {
	return notify.Notification{Title: "Error", Description: desc, Severity: notify.Destructive}
}
