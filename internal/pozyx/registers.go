package pozyx

// Register and function addresses of the tag's register map.
const (
	regIntStatus    byte = 0x05
	regPosAlg       byte = 0x14
	regPosNumAnchor byte = 0x15
	regPosX         byte = 0x30
	regPosZ         byte = 0x38
	regQuatW        byte = 0x60

	fnFlashSave     byte = 0xB1
	fnDoPositioning byte = 0xB6
	fnDevicesClear  byte = 0xC3
	fnDeviceAdd     byte = 0xC4
)

// Interrupt status bits.
const (
	intStatusErr byte = 1 << 0
	intStatusPos byte = 1 << 1
)

// Flash save kinds.
const (
	flashRegisters byte = 1
	flashAnchorIDs byte = 2
)

// MaxSelectedAnchors is the largest anchor count the tag can be told to use.
// The count occupies the low four bits of the anchor selection register.
const MaxSelectedAnchors = 15

// quatScale converts the tag's fixed point quaternion components.
const quatScale = 16384.0
