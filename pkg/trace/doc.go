// Package trace mirrors the traffic of comm sessions to observers: an MQTT
// broker or websocket clients. Records are encoded as protobuf Structs.
package trace
