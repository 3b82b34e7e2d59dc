package latte

import "github.com/lattetex/latte/internal"

// Version is the library version.
const Version = "0.3.0"

// Rendering defaults
const (
	// DefaultMaxDepth is the nesting ceiling shared by block structures and
	// component calls. Components count against the depth of their call
	// site, so mutually recursive components cannot loop forever.
	DefaultMaxDepth = internal.DefaultMaxDepth
)

// Component storage defaults
const (
	ComponentFileExt     = ".tex"
	DefaultComponentsDir = "components"
	DefaultTemplateFile  = "template.tex"
	DefaultDataFile      = "data.json"
)

// Error code constants for categorization
const (
	ErrCodeParse      = "LATTE_PARSE"
	ErrCodeRender     = "LATTE_RENDER"
	ErrCodeComponent  = "LATTE_COMPONENT"
	ErrCodeFilter     = "LATTE_FILTER"
	ErrCodeValidation = "LATTE_VALIDATION"
	ErrCodeStorage    = "LATTE_STORAGE"
	ErrCodeConfig     = "LATTE_CONFIG"
)

// Metadata keys attached to errors
const (
	MetaKeyLine      = "line"
	MetaKeyColumn    = "column"
	MetaKeyOffset    = "offset"
	MetaKeyPath      = "path"
	MetaKeyComponent = "component"
	MetaKeyKnown     = "known_components"
	MetaKeyFilter    = "filter"
	MetaKeyValue     = "value"
	MetaKeyExpected  = "expected"
	MetaKeyDepth     = "depth"
	MetaKeyLimit     = "limit"
	MetaKeyTemplate  = "template"
	MetaKeyFile      = "file"
	MetaKeyDriver    = "driver"
)

// Log messages
const (
	LogMsgEngineCreated      = "engine created"
	LogMsgTemplateParsed     = "template parsed"
	LogMsgTemplateCached     = "template cache hit"
	LogMsgRenderStart        = "render started"
	LogMsgRenderComplete     = "render complete"
	LogMsgRenderFailed       = "render failed"
	LogMsgComponentRegister  = "component registered"
	LogMsgComponentInvoked   = "component invoked"
	LogMsgComponentsLoaded   = "components loaded from directory"
	LogMsgStoreOpened        = "component store opened"
	LogMsgStoreClosed        = "component store closed"
	LogMsgDocumentWritten    = "document written"
	LogMsgBatchStart         = "batch render started"
	LogMsgBatchComplete      = "batch render complete"
	LogMsgConfigLoaded       = "configuration loaded"
	LogMsgFolderRenderStart  = "folder render started"
	LogMsgFolderRenderDone   = "folder render complete"
)

// Log field names
const (
	LogFieldComponent = "component"
	LogFieldCount     = "count"
	LogFieldDir       = "dir"
	LogFieldName      = "name"
	LogFieldOutput    = "output"
	LogFieldSourceLen = "source_len"
	LogFieldDuration  = "duration"
	LogFieldWorkers   = "workers"
	LogFieldSucceeded = "succeeded"
	LogFieldFailed    = "failed"
	LogFieldDriver    = "driver"
	LogFieldFile      = "file"
	LogFieldStrict    = "strict"
)
