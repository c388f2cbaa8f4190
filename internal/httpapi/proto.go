package httpapi

import (
	"fmt"
	"io"
	"net/http"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
)

// maxRequestBody caps device request bodies for both protobuf and JSON.
// The largest hub message encodes to well under 200 bytes.
const maxRequestBody = 4096

// deviceSchema is the accesshub.v1 wire schema spoken by hubs.  It is
// built from a descriptor at init and encoded with dynamicpb, so no
// generated code has to be kept in sync with the hub firmware.
var deviceSchema = mustDeviceSchema()

type deviceMessages struct {
	file                protoreflect.FileDescriptor
	heartbeatRequest    protoreflect.MessageDescriptor
	heartbeatResponse   protoreflect.MessageDescriptor
	accessEventRequest  protoreflect.MessageDescriptor
	accessEventResponse protoreflect.MessageDescriptor
}

type fieldSpec struct {
	name string
	num  int32
	typ  descriptorpb.FieldDescriptorProto_Type
}

func messageProto(name string, fields ...fieldSpec) *descriptorpb.DescriptorProto {
	m := &descriptorpb.DescriptorProto{Name: proto.String(name)}
	for _, f := range fields {
		m.Field = append(m.Field, &descriptorpb.FieldDescriptorProto{
			Name:     proto.String(f.name),
			JsonName: proto.String(f.name),
			Number:   proto.Int32(f.num),
			Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
			Type:     f.typ.Enum(),
		})
	}
	return m
}

func mustDeviceSchema() deviceMessages {
	const (
		tString = descriptorpb.FieldDescriptorProto_TYPE_STRING
		tBool   = descriptorpb.FieldDescriptorProto_TYPE_BOOL
		tUint64 = descriptorpb.FieldDescriptorProto_TYPE_UINT64
		tInt32  = descriptorpb.FieldDescriptorProto_TYPE_INT32
		tInt64  = descriptorpb.FieldDescriptorProto_TYPE_INT64
	)

	fdp := &descriptorpb.FileDescriptorProto{
		Name:    proto.String("accesshub/v1/device.proto"),
		Package: proto.String("accesshub.v1"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			messageProto("HeartbeatRequest",
				fieldSpec{"firmware_version", 1, tString},
				fieldSpec{"uptime_s", 2, tUint64},
				fieldSpec{"ip", 3, tString},
			),
			messageProto("HeartbeatResponse",
				fieldSpec{"ok", 1, tBool},
				fieldSpec{"hub_id", 2, tString},
				fieldSpec{"server_time", 3, tString},
			),
			messageProto("AccessEventRequest",
				fieldSpec{"point_id", 1, tString},
				fieldSpec{"position", 2, tInt32},
				fieldSpec{"code", 3, tString},
				fieldSpec{"at_ms", 4, tInt64},
			),
			messageProto("AccessEventResponse",
				fieldSpec{"ok", 1, tBool},
				fieldSpec{"access", 2, tString},
				fieldSpec{"granted", 3, tBool},
				fieldSpec{"point_id", 4, tString},
				fieldSpec{"event_id", 5, tString},
				fieldSpec{"server_time", 6, tString},
			),
		},
	}

	fd, err := protodesc.NewFile(fdp, nil)
	if err != nil {
		panic(fmt.Sprintf("accesshub.v1 descriptor: %v", err))
	}
	msgs := fd.Messages()
	return deviceMessages{
		file:                fd,
		heartbeatRequest:    msgs.ByName("HeartbeatRequest"),
		heartbeatResponse:   msgs.ByName("HeartbeatResponse"),
		accessEventRequest:  msgs.ByName("AccessEventRequest"),
		accessEventResponse: msgs.ByName("AccessEventResponse"),
	}
}

// isProtobuf returns true if the request's Content-Type indicates a
// protobuf payload.  Hubs send "application/x-protobuf".
func isProtobuf(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return ct == "application/x-protobuf" ||
		ct == "application/protobuf" ||
		ct == "application/octet-stream"
}

// readProto reads the request body and unmarshals it into msg.
func readProto(w http.ResponseWriter, r *http.Request, msg proto.Message) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		return err
	}
	return proto.Unmarshal(body, msg)
}

// writeProto marshals msg and writes it with the given HTTP status.
func writeProto(w http.ResponseWriter, status int, msg proto.Message) {
	data, err := proto.Marshal(msg)
	if err != nil {
		http.Error(w, "proto marshal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/x-protobuf")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
