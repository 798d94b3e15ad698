package renderer

const backgroundVertexShader = `
#version 410 core

out vec2 vUV;

// Fullscreen triangle without a vertex buffer.
void main() {
	vec2 pos = vec2((gl_VertexID << 1) & 2, gl_VertexID & 2);
	vUV = vec2(pos.x, 1.0 - pos.y);
	gl_Position = vec4(pos * 2.0 - 1.0, 0.0, 1.0);
}
`

const backgroundFragmentShader = `
#version 410 core

in vec2 vUV;
uniform sampler2D uTexture;
out vec4 FragColor;

void main() {
	// Canvas rows run top-down; the texture is uploaded as-is.
	FragColor = texture(uTexture, vUV);
}
`

const litVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;

uniform mat4 uViewProj;
uniform mat4 uModel;

out vec3 vWorldPos;
out vec3 vNormal;

void main() {
	vec4 world = uModel * vec4(aPos, 1.0);
	vWorldPos = world.xyz;
	vNormal = mat3(uModel) * aNormal;
	gl_Position = uViewProj * world;
}
`

const litFragmentShader = `
#version 410 core

#define MAX_POINT_LIGHTS 4

in vec3 vWorldPos;
in vec3 vNormal;

uniform vec3 uColor;
uniform float uOpacity;
uniform float uShininess;
uniform float uFresnel;
uniform vec3 uCameraPos;
uniform vec3 uAmbient;
uniform vec3 uSunDir;
uniform vec3 uSunColor;
uniform int uPointCount;
uniform vec3 uPointPos[MAX_POINT_LIGHTS];
uniform vec3 uPointColor[MAX_POINT_LIGHTS];
uniform float uPointRange[MAX_POINT_LIGHTS];
uniform float uPointDecay[MAX_POINT_LIGHTS];
uniform float uExposure;

out vec4 FragColor;

float attenuation(float d, float range, float decay) {
	float falloff = 1.0 / max(pow(d, decay), 0.01);
	if (range > 0.0) {
		float r = d / range;
		float w = clamp(1.0 - r * r * r * r, 0.0, 1.0);
		falloff *= w * w;
	}
	return falloff;
}

vec3 aces(vec3 x) {
	return clamp((x * (2.51 * x + 0.03)) / (x * (2.43 * x + 0.59) + 0.14), 0.0, 1.0);
}

void main() {
	vec3 n = normalize(vNormal);
	vec3 v = normalize(uCameraPos - vWorldPos);
	if (!gl_FrontFacing) {
		n = -n;
	}

	vec3 diffuse = uAmbient;
	vec3 spec = vec3(0.0);

	float ndl = max(dot(n, uSunDir), 0.0);
	diffuse += uSunColor * ndl;
	spec += uSunColor * pow(max(dot(n, normalize(uSunDir + v)), 0.0), uShininess) * ndl;

	for (int i = 0; i < uPointCount; i++) {
		vec3 toLight = uPointPos[i] - vWorldPos;
		float d = length(toLight);
		vec3 l = toLight / max(d, 1e-4);
		vec3 c = uPointColor[i] * attenuation(d, uPointRange[i], uPointDecay[i]);
		float pdl = max(dot(n, l), 0.0);
		diffuse += c * pdl;
		spec += c * pow(max(dot(n, normalize(l + v)), 0.0), uShininess) * pdl;
	}

	vec3 color = uColor * diffuse / 3.14159 + spec * 0.25;
	float alpha = uOpacity;
	if (uFresnel > 0.0) {
		float f = pow(1.0 - max(dot(n, v), 0.0), 3.0);
		alpha = clamp(uOpacity + f * uFresnel, 0.0, 1.0);
	}
	color = aces(color * uExposure);
	FragColor = vec4(pow(color, vec3(1.0 / 2.2)), alpha);
}
`

const snowVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;

uniform mat4 uViewProj;
uniform mat4 uModel;
uniform float uSize;
uniform float uScale;

void main() {
	vec4 world = uModel * vec4(aPos, 1.0);
	gl_Position = uViewProj * world;
	// Size attenuation: world size projected at the point's depth.
	gl_PointSize = max(uSize * uScale / gl_Position.w, 1.0);
}
`

const snowFragmentShader = `
#version 410 core

uniform vec4 uColor;
out vec4 FragColor;

void main() {
	FragColor = uColor;
}
`

const billboardVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;

uniform mat4 uViewProj;
uniform mat4 uModel;
uniform vec2 uPlaneSize;

out vec2 vUV;
out vec2 vPos;

void main() {
	vUV = aPos.xy / uPlaneSize + 0.5;
	vUV.y = 1.0 - vUV.y;
	vPos = aPos.xy;
	gl_Position = uViewProj * uModel * vec4(aPos, 1.0);
}
`

const billboardFragmentShader = `
#version 410 core

in vec2 vUV;
in vec2 vPos;

uniform sampler2D uMap;
uniform sampler2D uMapPrev;
uniform float uBlend;
uniform float uEdgeRadius;

out vec4 FragColor;

void main() {
	float dist = length(vPos);
	float edge = smoothstep(uEdgeRadius, uEdgeRadius - 0.3, dist);
	vec4 prev = texture(uMapPrev, vUV);
	vec4 cur = texture(uMap, vUV);
	FragColor = vec4(mix(prev, cur, uBlend).rgb, edge);
}
`
