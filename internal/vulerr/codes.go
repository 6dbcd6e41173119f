package vulerr

// Internal bookkeeping (10000s).
const (
	BrokenIndex Code = 10001
)

// Names (11000s).
const (
	InvalidIdentifier  Code = 11001
	GlobalNameConflict Code = 11002
	LocalNameConflict  Code = 11003
)

// Types and local definitions (12000s).
const (
	UnknownType           Code = 12001
	LocalConfigInvalid    Code = 12002
	LocalBundleInvalid    Code = 12003
	LocalBundleCircular   Code = 12004
	StorageInvalid        Code = 12005
	OverrideInvalid       Code = 12006
	InstanceModuleMissing Code = 12007
	OverrideUnknown       Code = 12008
	PipeInstanceInvalid   Code = 12009
)

// Request/service connections (13000s).
const (
	ReqEndpointNotFound   Code = 13001
	ReqSignatureMismatch  Code = 13002
	ServiceUnconnected    Code = 13003
	ReqMultipleConnection Code = 13004
	ConnectedAndCoded     Code = 13005
	RequestUnconnected    Code = 13006
	ReqEndpointDirection  Code = 13007
	CodeTargetNotFound    Code = 13008
)

// Pipe connections (14000s).
const (
	PipeEndpointNotFound Code = 14001
	PipePortAmbiguous    Code = 14002
	PipeTypeMismatch     Code = 14003
	PipePortUnconnected  Code = 14004
	PipePortMultiConnect Code = 14005
	PipeDirectionInvalid Code = 14006
)

// Stall and update sequence (15000s).
const (
	SeqNodeNotFound Code = 15001
	SeqSelfLoop     Code = 15002
	StallCircular   Code = 15003
	UpdateCircular  Code = 15004
)

// Project loading (20000s).
const (
	ProjectParse  Code = 20001
	ProjectDecode Code = 20002
	ProjectWrite  Code = 20003
)

// Config library (30000s).
const (
	ConfigNotFound        Code = 30001
	ConfigExists          Code = 30002
	ConfigInvalidName     Code = 30003
	ConfigExprInvalid     Code = 30004
	ConfigUndefined       Code = 30005
	ConfigEvalFailed      Code = 30006
	ConfigCircular        Code = 30007
	ConfigStillReferenced Code = 30008
)

// Bundle library (31000s).
const (
	BundleNotFound          Code = 31001
	BundleInvalidName       Code = 31002
	BundleAliasMembers      Code = 31003
	BundleEnumWithMembers   Code = 31004
	BundleDuplicateMember   Code = 31005
	BundleUnknownMemberType Code = 31006
	BundleUintType          Code = 31007
	BundleDefaultNotAllowed Code = 31008
	BundleExprInvalid       Code = 31009
	BundleConflict          Code = 31010
	BundleCircular          Code = 31011
	BundleStillReferenced   Code = 31012
	SnapshotNotFound        Code = 31013
	BundleUndefinedConfig   Code = 31014
	BundleTagNotFound       Code = 31015
	BundleExists            Code = 31016
)

// Module library (32000s).
const (
	ModuleNotFound        Code = 32001
	ModuleExists          Code = 32002
	ModuleStillReferenced Code = 32003
	ModuleCircular        Code = 32004
	ModuleInvalidName     Code = 32005
)
