package events

// Event types follow the domain.action format.
const (
	EventTypeMessageCreated = "message.created"
	EventTypeMessageRead    = "message.read"
)

// ChannelPrefixUser is the per-user redis pub/sub channel prefix. Every
// event concerning a user (new message in any of their threads, read-state
// change) is published to their channel.
const ChannelPrefixUser = "channel:user:"

// UserChannel returns the pub/sub channel for a user id.
func UserChannel(userID string) string {
	return ChannelPrefixUser + userID
}
