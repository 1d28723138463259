package catalog

// Config carries the hand-maintained name lists the metadata cannot supply.
type Config struct {
	// UndeclaredFlags are flags used in signatures but never declared as
	// *FlagBits enums. They are assumed to be 32 bits wide.
	UndeclaredFlags []string

	DispatchableHandles    []string
	NonDispatchableHandles []string
	PlatformHandles        []string
}

// DefaultConfig returns the built-in lists.
func DefaultConfig() Config {
	return Config{
		UndeclaredFlags:        append([]string(nil), defaultUndeclaredFlags...),
		DispatchableHandles:    append([]string(nil), defaultDispatchable...),
		NonDispatchableHandles: append([]string(nil), defaultNonDispatchable...),
		PlatformHandles:        append([]string(nil), defaultPlatformHandles...),
	}
}

// Extend returns a copy of c with the given names appended to each list.
func (c Config) Extend(flags, dispatchable, nonDispatchable, platform []string) Config {
	return Config{
		UndeclaredFlags:        concat(c.UndeclaredFlags, flags),
		DispatchableHandles:    concat(c.DispatchableHandles, dispatchable),
		NonDispatchableHandles: concat(c.NonDispatchableHandles, nonDispatchable),
		PlatformHandles:        concat(c.PlatformHandles, platform),
	}
}

func concat(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// TODO: declare these in the metadata as *FlagBits enums and drop the list.
var defaultUndeclaredFlags = []string{
	"VkAccelerationStructureMotionInfoFlagsNV",
	"VkAccelerationStructureMotionInstanceFlagsNV",
	"VkBufferViewCreateFlags",
	"VkCommandPoolTrimFlags",
	"VkDebugUtilsMessengerCallbackDataFlagsEXT",
	"VkDebugUtilsMessengerCreateFlagsEXT",
	"VkDescriptorPoolResetFlags",
	"VkDescriptorUpdateTemplateCreateFlags",
	"VkDeviceCreateFlags",
	"VkDeviceMemoryReportFlagsEXT",
	"VkDirectDriverLoadingFlagsLUNARG",
	"VkDisplayModeCreateFlagsKHR",
	"VkDisplaySurfaceCreateFlagsKHR",
	"VkHeadlessSurfaceCreateFlagsEXT",
	"VkIOSSurfaceCreateFlagsMVK",
	"VkMacOSSurfaceCreateFlagsMVK",
	"VkMemoryMapFlags",
	"VkMemoryUnmapFlagsKHR",
	"VkPipelineCoverageModulationStateCreateFlagsNV",
	"VkPipelineCoverageReductionStateCreateFlagsNV",
	"VkPipelineCoverageToColorStateCreateFlagsNV",
	"VkPipelineDiscardRectangleStateCreateFlagsEXT",
	"VkPipelineDynamicStateCreateFlags",
	"VkPipelineInputAssemblyStateCreateFlags",
	"VkPipelineMultisampleStateCreateFlags",
	"VkPipelineRasterizationConservativeStateCreateFlagsEXT",
	"VkPipelineRasterizationDepthClipStateCreateFlagsEXT",
	"VkPipelineRasterizationStateCreateFlags",
	"VkPipelineRasterizationStateStreamCreateFlagsEXT",
	"VkPipelineTessellationStateCreateFlags",
	"VkPipelineVertexInputStateCreateFlags",
	"VkPipelineViewportStateCreateFlags",
	"VkPipelineViewportSwizzleStateCreateFlagsNV",
	"VkQueryPoolCreateFlags",
	"VkValidationCacheCreateFlagsEXT",
	"VkVideoBeginCodingFlagsKHR",
	"VkVideoDecodeFlagsKHR",
	"VkVideoEncodeFlagsKHR",
	"VkVideoEncodeRateControlFlagsKHR",
	"VkVideoEndCodingFlagsKHR",
	"VkVideoSessionParametersCreateFlagsKHR",
	"VkWaylandSurfaceCreateFlagsKHR",
	"VkWin32SurfaceCreateFlagsKHR",
	"VkXcbSurfaceCreateFlagsKHR",
	"VkXlibSurfaceCreateFlagsKHR",
}

var defaultDispatchable = []string{
	"VkInstance",
	"VkPhysicalDevice",
	"VkDevice",
	"VkQueue",
	"VkCommandBuffer",
}

var defaultNonDispatchable = []string{
	"VkSemaphore",
	"VkFence",
	"VkDeviceMemory",
	"VkBuffer",
	"VkImage",
	"VkEvent",
	"VkQueryPool",
	"VkBufferView",
	"VkImageView",
	"VkShaderModule",
	"VkPipelineCache",
	"VkPipelineLayout",
	"VkRenderPass",
	"VkPipeline",
	"VkDescriptorSetLayout",
	"VkSampler",
	"VkDescriptorPool",
	"VkDescriptorSet",
	"VkFramebuffer",
	"VkCommandPool",
	"VkSamplerYcbcrConversion",
	"VkDescriptorUpdateTemplate",
	"VkSurfaceKHR",
	"VkSwapchainKHR",
	"VkDisplayKHR",
	"VkDisplayModeKHR",
	"VkDebugReportCallbackEXT",
	"VkObjectTableNVX",
	"VkIndirectCommandsLayoutNVX",
	"VkDebugUtilsMessengerEXT",
	"VkValidationCacheEXT",
	"VkPerformanceConfigurationINTEL",
	"VkVideoSessionKHR",
	"VkVideoSessionParametersKHR",
	"VkAccelerationStructureKHR",
	"VkDeferredOperationKHR",
}

var defaultPlatformHandles = []string{
	"HANDLE",
	"HWND",
	"HINSTANCE",
	"HMONITOR",
}

// basePrimitives are the C types that are always primitive.
var basePrimitives = []string{
	"bool",
	"int32_t",
	"int64_t",
	"uint8_t",
	"uint16_t",
	"uint32_t",
	"uint64_t",
	"size_t",
	"float",
	"double",
	"void*",
	"void**",
	"nullptr",
}

var (
	uint32Aliases = []string{"uint32_t", "bool32_t", "VkBool32"}
	uint64Aliases = []string{"VkDeviceSize", "VkDeviceAddress"}
)
