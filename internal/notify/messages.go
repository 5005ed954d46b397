package notify

import (
	"fmt"
	"time"
)

// SaveSucceeded confirms a stored session for the given calendar day.
func SaveSucceeded(day time.Time) Notification {
	return Notification{
		Title:       "Saved Successfully",
		Description: fmt.Sprintf("Your mental reset session for %s has been saved.", day.Format("1/2/2006")),
		Variant:     VariantDefault,
	}
}

// SaveFailed reports a storage failure; the draft is kept for retry.
func SaveFailed() Notification {
	return Notification{
		Title:       "Save Failed",
		Description: "There was an error saving your session. Please try again.",
		Variant:     VariantDestructive,
	}
}

// ResetComplete confirms that the planner was cleared.
func ResetComplete() Notification {
	return Notification{
		Title:       "Reset Complete",
		Description: "Your planner has been cleared. Take a moment and start fresh.",
		Variant:     VariantDefault,
	}
}

// ActivityLimitReached explains a rejected activity toggle.
func ActivityLimitReached(limit int) Notification {
	return Notification{
		Title:       "Limit Reached",
		Description: fmt.Sprintf("You can choose up to %d activities. Unselect one to pick another.", limit),
		Variant:     VariantDestructive,
	}
}

// FetchFailed reports that saved sessions could not be loaded.
func FetchFailed() Notification {
	return Notification{
		Title:       "Error",
		Description: "Failed to load your sessions.",
		Variant:     VariantDestructive,
	}
}

// SignInRequired explains the redirect on an unauthenticated save.
func SignInRequired() Notification {
	return Notification{
		Title:       "Sign In Required",
		Description: "Please sign in to save your session.",
		Variant:     VariantDefault,
	}
}
