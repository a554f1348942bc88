package gpu

import (
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/galaxy"
	"github.com/gekko3d/galaxy/rt/shaders"
)

const quadVertices = 6

// CloudBuffers holds one instance-rate vertex buffer per point attribute.
type CloudBuffers struct {
	ID         string
	Count      uint32
	Positions  *wgpu.Buffer
	Colors     *wgpu.Buffer
	Scales     *wgpu.Buffer
	Randomness *wgpu.Buffer

	pass *PointsPass
}

func (b *CloudBuffers) Release() {
	if b == nil {
		return
	}
	for _, buf := range []**wgpu.Buffer{&b.Positions, &b.Colors, &b.Scales, &b.Randomness} {
		if *buf != nil {
			(*buf).Release()
			*buf = nil
		}
	}
	if b.pass != nil && b.pass.cloud == b {
		b.pass.cloud = nil
	}
	b.pass = nil
	b.Count = 0
}

// PointsPass draws the galaxy as additive instanced billboards.
type PointsPass struct {
	Device        *wgpu.Device
	Queue         *wgpu.Queue
	Pipeline      *wgpu.RenderPipeline
	UniformBuffer *wgpu.Buffer
	BindGroup     *wgpu.BindGroup
	Material      *Material

	cloud *CloudBuffers
}

func NewPointsPass(device *wgpu.Device, format wgpu.TextureFormat) (*PointsPass, error) {
	shaderModule, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "GalaxyShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.GalaxyWGSL},
	})
	if err != nil {
		return nil, err
	}
	defer shaderModule.Release()

	bgl, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "GalaxyUniformBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: PointUniformsSize,
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	pipelineLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		BindGroupLayouts: []*wgpu.BindGroupLayout{bgl},
	})
	if err != nil {
		return nil, err
	}

	vec3Layout := func(location uint32) wgpu.VertexBufferLayout {
		return wgpu.VertexBufferLayout{
			ArrayStride: 3 * 4,
			StepMode:    wgpu.VertexStepModeInstance,
			Attributes: []wgpu.VertexAttribute{
				{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: location},
			},
		}
	}

	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "GalaxyPipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     shaderModule,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				vec3Layout(0), // position
				vec3Layout(1), // color
				{
					ArrayStride: 4,
					StepMode:    wgpu.VertexStepModeInstance,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32, Offset: 0, ShaderLocation: 2},
					},
				},
				vec3Layout(3), // randomness
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shaderModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    format,
					WriteMask: wgpu.ColorWriteMaskAll,
					Blend: &wgpu.BlendState{
						Color: wgpu.BlendComponent{
							Operation: wgpu.BlendOperationAdd,
							SrcFactor: wgpu.BlendFactorSrcAlpha,
							DstFactor: wgpu.BlendFactorOne,
						},
						Alpha: wgpu.BlendComponent{
							Operation: wgpu.BlendOperationAdd,
							SrcFactor: wgpu.BlendFactorOne,
							DstFactor: wgpu.BlendFactorOne,
						},
					},
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		DepthStencil: nil, // additive, order independent, no depth writes
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}

	uniformBuffer, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "GalaxyUniforms",
		Size:  PointUniformsSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}

	bindGroup, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "GalaxyUniformBG",
		Layout: bgl,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: uniformBuffer, Size: PointUniformsSize},
		},
	})
	if err != nil {
		return nil, err
	}

	return &PointsPass{
		Device:        device,
		Queue:         device.GetQueue(),
		Pipeline:      pipeline,
		UniformBuffer: uniformBuffer,
		BindGroup:     bindGroup,
		Material:      NewMaterial(),
	}, nil
}

// Upload creates the vertex buffers for a cloud and makes it the one drawn.
// The previous cloud must already be released by its owner.
func (p *PointsPass) Upload(cloud *galaxy.PointCloud) (galaxy.Resources, error) {
	b := &CloudBuffers{ID: cloud.ID, Count: uint32(cloud.Len()), pass: p}
	if b.Count == 0 {
		p.cloud = b
		return b, nil
	}

	attrs := []struct {
		label string
		data  []float32
		dst   **wgpu.Buffer
	}{
		{"GalaxyPositions", cloud.Positions, &b.Positions},
		{"GalaxyColors", cloud.Colors, &b.Colors},
		{"GalaxyScales", cloud.Scales, &b.Scales},
		{"GalaxyRandomness", cloud.Randomness, &b.Randomness},
	}
	for _, a := range attrs {
		buf, err := p.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
			Label:    a.label,
			Contents: wgpu.ToBytes(a.data),
			Usage:    wgpu.BufferUsageVertex,
		})
		if err != nil {
			b.Release()
			return nil, fmt.Errorf("create %s (%d bytes): %w", a.label, len(a.data)*int(unsafe.Sizeof(float32(0))), err)
		}
		*a.dst = buf
	}

	p.cloud = b
	return b, nil
}

// Prepare uploads the material uniforms if they changed since last frame.
func (p *PointsPass) Prepare() {
	if u, ok := p.Material.take(); ok {
		p.Queue.WriteBuffer(p.UniformBuffer, 0, u.Bytes())
	}
}

func (p *PointsPass) Draw(pass *wgpu.RenderPassEncoder) {
	b := p.cloud
	if b == nil || b.Count == 0 {
		return
	}
	pass.SetPipeline(p.Pipeline)
	pass.SetBindGroup(0, p.BindGroup, nil)
	pass.SetVertexBuffer(0, b.Positions, 0, b.Positions.GetSize())
	pass.SetVertexBuffer(1, b.Colors, 0, b.Colors.GetSize())
	pass.SetVertexBuffer(2, b.Scales, 0, b.Scales.GetSize())
	pass.SetVertexBuffer(3, b.Randomness, 0, b.Randomness.GetSize())
	pass.Draw(quadVertices, b.Count, 0, 0)
}

// Live returns the cloud currently bound for drawing, if any.
func (p *PointsPass) Live() *CloudBuffers {
	return p.cloud
}

func (p *PointsPass) Release() {
	if p.cloud != nil {
		p.cloud.Release()
	}
	if p.BindGroup != nil {
		p.BindGroup.Release()
	}
	if p.UniformBuffer != nil {
		p.UniformBuffer.Release()
	}
	if p.Pipeline != nil {
		p.Pipeline.Release()
	}
}
