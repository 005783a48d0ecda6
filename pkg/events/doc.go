// Package events carries contact change notifications over Redis Pub/Sub.
//
// # Overview
//
// Every successful create, update or delete in the contact book is announced
// as an Event after the database transaction commits. Subscribers such as
// `contactbook watch` receive the full contact as it was written (or, for a
// delete, as it was before removal).
//
// Delivery is at-most-once: Redis Pub/Sub drops messages for slow or absent
// subscribers, and a failed publish never undoes the write it describes.
// The database stays the source of truth.
//
// # Multi-Instance Support
//
// Channels are namespaced by instance name so several contact books can share
// one Redis server.
//
// Channel pattern: contactbook:{instance_name}:contact_events
//
// # Usage Example
//
//	client, err := events.NewClient(&redis.Options{Addr: "localhost:6379"}, "default")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	sub, err := client.Subscribe(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer sub.Close()
//
//	for ev := range sub.Events() {
//		fmt.Println(ev.Type, ev.Contact.Email)
//	}
package events
