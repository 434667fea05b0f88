// Package relay implements the connection registry and message routing core.
//
// The Registry owns the user id → connection association and is its sole
// mutator. Each registered connection gets a dedicated writer goroutine, so
// a slow client only ever stalls itself. The Pipeline drives one inbound
// message through validate → classify → annotate → route; classification
// runs with no registry lock held.
package relay
