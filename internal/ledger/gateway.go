package ledger

// ServiceName is the gRPC service the ledger gateway daemon exposes.
const ServiceName = "ledgerdrive.ledger.v1.Ledger"

// Gateway method names.
const (
	MethodPing             = "Ping"
	MethodAccountExists    = "AccountExists"
	MethodEnsureConfig     = "EnsureConfig"
	MethodEnsureProfile    = "EnsureProfile"
	MethodCreateFileRecord = "CreateFileRecord"
	MethodRegisterStorage  = "RegisterStorage"
	MethodFinalizeFile     = "FinalizeFile"
	MethodSetVisibility    = "SetVisibility"
	MethodListFilesByOwner = "ListFilesByOwner"
	MethodGetProfile       = "GetProfile"
	MethodGetConfig        = "GetConfig"
)

// FullMethod returns the gRPC path of a gateway method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// CodecName is the content-subtype clients must request so that calls are
// encoded with the gateway's JSON codec.
func CodecName() string { return codecName }
