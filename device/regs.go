package device

import "fmt"

// Register is a device register address.
type Register uint16

// Edge walker registers. A triangle is drawn as two trapezoids sharing the
// dominant (long) edge: the upper part runs Count scanlines against the first
// sub edge, the lower part runs SubCount scanlines against the second.
// Positions and slopes are 16.16 fixed point.
const (
	RegStartXDom  Register = 0x000 // dominant edge X at the first scanline
	RegDXDom      Register = 0x004 // dominant edge X step per scanline
	RegStartXSub  Register = 0x008 // first sub edge X at the first scanline
	RegDXSub      Register = 0x00C // first sub edge X step per scanline
	RegStartXSub2 Register = 0x010 // second sub edge X at its first scanline
	RegDXSub2     Register = 0x014 // second sub edge X step per scanline
	RegStartY     Register = 0x018 // first scanline, 15-bit
	RegCount      Register = 0x01C // scanlines of the upper trapezoid, 15-bit
	RegSubCount   Register = 0x020 // scanlines of the lower trapezoid, 15-bit
)

// Attribute registers. Each attribute has a start value at the first pixel
// of the first scanline, a step per pixel along the scan direction and a
// step per scanline along the dominant edge.
const (
	RegRStart  Register = 0x040
	RegDRdx    Register = 0x044
	RegDRdyDom Register = 0x048
	RegGStart  Register = 0x04C
	RegDGdx    Register = 0x050
	RegDGdyDom Register = 0x054
	RegBStart  Register = 0x058
	RegDBdx    Register = 0x05C
	RegDBdyDom Register = 0x060
	RegAStart  Register = 0x064
	RegDAdx    Register = 0x068
	RegDAdyDom Register = 0x06C

	RegZStart  Register = 0x070
	RegDZdx    Register = 0x074
	RegDZdyDom Register = 0x078

	RegSStart  Register = 0x080
	RegDSdx    Register = 0x084
	RegDSdyDom Register = 0x088
	RegTStart  Register = 0x08C
	RegDTdx    Register = 0x090
	RegDTdyDom Register = 0x094
	RegQStart  Register = 0x098
	RegDQdx    Register = 0x09C
	RegDQdyDom Register = 0x0A0

	RegFStart  Register = 0x0B0
	RegDFdx    Register = 0x0B4
	RegDFdyDom Register = 0x0B8
)

// Line registers. Lines step one pixel along their major axis per step.
const (
	RegLineX     Register = 0x0C0 // start X, 16.16
	RegLineY     Register = 0x0C4 // start Y, 16.16
	RegLineDX    Register = 0x0C8 // X step per pixel, 16.16
	RegLineDY    Register = 0x0CC // Y step per pixel, 16.16
	RegLineCount Register = 0x0D0 // pixels, 15-bit
)

// Texture unit registers.
const (
	RegLOD     Register = 0x100 // mip level of detail, 4.4
	RegTexBase Register = 0x104 // byte offset of level 0
	RegTexSize Register = 0x108 // TexSize* fields
	RegTexMode Register = 0x10C // TexMode* fields
)

// Global registers.
const (
	RegWindowOrigin Register = 0x140 // signed 16-bit x | y<<16
	RegAlphaRef     Register = 0x144 // alpha test reference, 8-bit
	RegStatus       Register = 0x180 // read-only status
	RegRender       Register = 0x1FC // writing a command starts a primitive
)

// RegStatus bits.
const (
	StatusBusy uint32 = 1 << 0
)

// RegTexSize fields: log2 of the square side and number of mip levels.
const (
	TexSizeLog2Mask    = 0xF
	TexSizeLevelsShift = 4
	TexSizeLevelsMask  = 0xF << TexSizeLevelsShift
)

// RegTexMode fields.
const (
	TexModeRepeatS   uint32 = 1 << 0
	TexModeRepeatT   uint32 = 1 << 1
	TexModeMirrorS   uint32 = 1 << 2
	TexModeMirrorT   uint32 = 1 << 3
	TexModeMagLinear uint32 = 1 << 4
	TexModeMinLinear uint32 = 1 << 5
	TexModeMipmap    uint32 = 1 << 6
)

var regNames = map[Register]string{
	RegStartXDom: "StartXDom", RegDXDom: "dXDom",
	RegStartXSub: "StartXSub", RegDXSub: "dXSub",
	RegStartXSub2: "StartXSub2", RegDXSub2: "dXSub2",
	RegStartY: "StartY", RegCount: "Count", RegSubCount: "SubCount",
	RegRStart: "RStart", RegDRdx: "dRdx", RegDRdyDom: "dRdyDom",
	RegGStart: "GStart", RegDGdx: "dGdx", RegDGdyDom: "dGdyDom",
	RegBStart: "BStart", RegDBdx: "dBdx", RegDBdyDom: "dBdyDom",
	RegAStart: "AStart", RegDAdx: "dAdx", RegDAdyDom: "dAdyDom",
	RegZStart: "ZStart", RegDZdx: "dZdx", RegDZdyDom: "dZdyDom",
	RegSStart: "SStart", RegDSdx: "dSdx", RegDSdyDom: "dSdyDom",
	RegTStart: "TStart", RegDTdx: "dTdx", RegDTdyDom: "dTdyDom",
	RegQStart: "QStart", RegDQdx: "dQdx", RegDQdyDom: "dQdyDom",
	RegFStart: "FStart", RegDFdx: "dFdx", RegDFdyDom: "dFdyDom",
	RegLineX: "LineX", RegLineY: "LineY", RegLineDX: "LineDX",
	RegLineDY: "LineDY", RegLineCount: "LineCount",
	RegLOD: "LOD", RegTexBase: "TexBase", RegTexSize: "TexSize", RegTexMode: "TexMode",
	RegWindowOrigin: "WindowOrigin", RegAlphaRef: "AlphaRef",
	RegStatus: "Status", RegRender: "Render",
}

// String returns the register name.
func (r Register) String() string {
	if n, ok := regNames[r]; ok {
		return n
	}
	return fmt.Sprintf("Register(%#x)", uint16(r))
}
