package webgpu

// UIShader draws UI meshes. Positions are in points and mapped to clip
// space by the projection. Vertex colors are sRGB and are linearized when the
// target format encodes on write.
const UIShader = `
struct Uniforms {
    projection: mat4x4<f32>,
    srgb_target: f32,
}

@group(0) @binding(0) var<uniform> uniforms: Uniforms;
@group(1) @binding(0) var uiTexture: texture_2d<f32>;
@group(1) @binding(1) var uiSampler: sampler;

struct VertexInput {
    @location(0) position: vec2<f32>,
    @location(1) texCoord: vec2<f32>,
    @location(2) color: vec4<f32>,
}

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) texCoord: vec2<f32>,
    @location(1) color: vec4<f32>,
}

fn linear_from_srgb(srgb: vec3<f32>) -> vec3<f32> {
    let lower = srgb / vec3<f32>(12.92);
    let higher = pow((srgb + vec3<f32>(0.055)) / vec3<f32>(1.055), vec3<f32>(2.4));
    return mix(higher, lower, step(srgb, vec3<f32>(0.04045)));
}

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.position = uniforms.projection * vec4<f32>(in.position, 0.0, 1.0);
    out.texCoord = in.texCoord;
    let lin = linear_from_srgb(in.color.rgb);
    out.color = vec4<f32>(mix(in.color.rgb, lin, vec3<f32>(uniforms.srgb_target)), in.color.a);
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return in.color * textureSample(uiTexture, uiSampler, in.texCoord);
}
`
