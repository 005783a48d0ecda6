package events

import "fmt"

// ContactEventsChannel returns the Pub/Sub channel name for contact events.
// Pattern: contactbook:{instance_name}:contact_events
func ContactEventsChannel(instanceName string) string {
	return fmt.Sprintf("contactbook:%s:contact_events", instanceName)
}
