package outbox

const sessionSavedSchema = `{
  "type": "object",
  "title": "ResetSessionSaved",
  "properties": {
    "session_id": {"type": "string"},
    "user_id": {"type": "string"},
    "date": {"type": "string", "format": "date"},
    "mood": {"type": "string"},
    "activities": {"type": "array", "items": {"type": "string"}},
    "activity_count": {"type": "integer"},
    "has_custom_activity": {"type": "boolean"},
    "has_next_step": {"type": "boolean"},
    "version": {"type": "string"}
  },
  "required": ["session_id", "user_id", "date", "mood", "activities", "activity_count", "version"],
  "additionalProperties": false
}`
