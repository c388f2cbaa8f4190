package httpapi

import (
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/BrandonDHaskell/accesshub/internal/accesshub/types"
)

func field(m *dynamicpb.Message, name protoreflect.Name) protoreflect.Value {
	return m.Get(m.Descriptor().Fields().ByName(name))
}

func setField(m *dynamicpb.Message, name protoreflect.Name, v protoreflect.Value) {
	m.Set(m.Descriptor().Fields().ByName(name), v)
}

// ── Heartbeat ────────────────────────────────────────────────────────────────

func heartbeatRequestFromProto(m *dynamicpb.Message) types.HeartbeatRequest {
	return types.HeartbeatRequest{
		FirmwareVersion: field(m, "firmware_version").String(),
		UptimeSeconds:   field(m, "uptime_s").Uint(),
		IP:              field(m, "ip").String(),
	}
}

func heartbeatResponseToProto(r types.HeartbeatResponse) *dynamicpb.Message {
	m := dynamicpb.NewMessage(deviceSchema.heartbeatResponse)
	setField(m, "ok", protoreflect.ValueOfBool(r.OK))
	setField(m, "hub_id", protoreflect.ValueOfString(r.HubID))
	setField(m, "server_time", protoreflect.ValueOfString(r.ServerTime))
	return m
}

// ── Access events ────────────────────────────────────────────────────────────

func accessEventRequestFromProto(m *dynamicpb.Message) types.AccessEventRequest {
	return types.AccessEventRequest{
		PointID:  field(m, "point_id").String(),
		Position: int(field(m, "position").Int()),
		Code:     field(m, "code").String(),
		AtMs:     field(m, "at_ms").Int(),
	}
}

func accessEventResponseToProto(r types.AccessEventResponse) *dynamicpb.Message {
	m := dynamicpb.NewMessage(deviceSchema.accessEventResponse)
	setField(m, "ok", protoreflect.ValueOfBool(r.OK))
	setField(m, "access", protoreflect.ValueOfString(r.Access))
	setField(m, "granted", protoreflect.ValueOfBool(r.Granted))
	setField(m, "point_id", protoreflect.ValueOfString(r.PointID))
	setField(m, "event_id", protoreflect.ValueOfString(r.EventID))
	setField(m, "server_time", protoreflect.ValueOfString(r.ServerTime))
	return m
}
